// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package model holds the records the ClubPulse API exchanges.
//
// Each record carries two sets of tags. The json tags match the API's wire
// format and are used to decode responses and encode request bodies. The
// jsonapi tags drive output: list commands marshal results as a JSON:API
// document so that the attrs, filter and sort flags can address fields by
// name, and --schema lists the attr tags of the record.
package model
