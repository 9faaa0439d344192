package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clubpulse/internal/meta"
)

const bashCompletionScript = `# bash completion for clubpulse
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_clubpulse()
{
    local cur prev cmd sub
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "login signup logout whoami members events approvals event-approvals reports notifications clubs administrations dashboard completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    sub=${COMP_WORDS[2]}
  local common="--attrs -a --color -c --filter -f --local --output -o --search -q --sort -s --titles -t --schema --tldr"

    case "$prev" in
    --output|-o)
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
        ;;
    --period|-p)
        COMPREPLY=( $(compgen -W "week month year" -- "$cur") )
        return 0
        ;;
    --format)
        COMPREPLY=( $(compgen -W "csv pdf" -- "$cur") )
        return 0
        ;;
    --status)
        if [[ "$cmd" == "events" ]]; then
            COMPREPLY=( $(compgen -W "attending not-attending maybe" -- "$cur") )
        elif [[ "$cmd" == "event-approvals" ]]; then
            COMPREPLY=( $(compgen -W "approved rejected" -- "$cur") )
        fi
        return 0
        ;;
    esac

    local subs="" opts="$common"
    case "$cmd" in
        login)
            opts="--email --password"
            ;;
        logout|whoami|signup)
            opts=""
            ;;
        members)
            subs="search add update rm"
            case "$sub" in
                add|update) opts="--name --email --role --status --phone --department" ;;
                rm) opts="" ;;
            esac
            ;;
        events)
            subs="attendees add rm rsvp"
            case "$sub" in
                add) opts="--title --date --time --location --type --description --max-attendees --budget" ;;
                rsvp) opts="--status" ;;
                rm) opts="" ;;
            esac
            ;;
        approvals)
            subs="approve reject"
            case "$sub" in
                approve) opts="--notes" ;;
                reject) opts="--reason" ;;
            esac
            ;;
        event-approvals)
            subs="add"
            [[ "$sub" == "add" ]] && opts="--status --remarks"
            ;;
        reports)
            subs="generate approve reject export"
            case "$sub" in
                generate) opts="--title --type --content" ;;
                reject) opts="--reason" ;;
                export) opts="--format --out" ;;
                approve) opts="" ;;
            esac
            ;;
        notifications)
            subs="count read rm watch"
            case "$sub" in
                read) opts="--all" ;;
                watch) opts="--interval" ;;
                count|rm) opts="" ;;
            esac
            ;;
        clubs)
            subs="add"
            [[ "$sub" == "add" ]] && opts="--name --university-id"
            ;;
        administrations)
            subs="add"
            [[ "$sub" == "add" ]] && opts="--university-id --name --email --phone"
            ;;
        dashboard)
            subs="growth attendance financial custom"
            case "$sub" in
                growth|attendance|financial) opts="$common --period -p" ;;
                custom) opts="--metric -m --where -w --output -o" ;;
            esac
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
    esac

    if [[ ${COMP_CWORD} -eq 2 && "$cur" != -* ]]; then
        COMPREPLY=( $(compgen -W "$subs" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _clubpulse clubpulse
`

const zshCompletionScript = `#compdef clubpulse

_clubpulse() {
  local -a cmds
  cmds=(
    'login:log in'
    'signup:create an account'
    'logout:end the session'
    'whoami:show the logged in user'
    'members:member roster'
    'events:club events'
    'approvals:pending requests'
    'event-approvals:event approval decisions'
    'reports:club reports'
    'notifications:notification inbox'
    'clubs:registered clubs'
    'administrations:university administrations'
    'dashboard:club analytics'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '--local[local timestamps]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-q --search)'{-q,--search}'[text to search for]:text'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--schema[dump schema]'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'clubpulse commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    login)
      _arguments -C '--email[account email]:email' '--password[account password]:password'
      ;;
    members)
      _arguments -C $common '1: :(search add update rm)' \
        '--name[name]:name' '--email[email]:email' '--role[role]:role' \
        '--status[status]:status' '--phone[phone]:phone' '--department[department]:department'
      ;;
    events)
      _arguments -C $common '1: :(attendees add rm rsvp)' \
        '--title[title]:title' '--date[date]:date' '--time[time]:time' \
        '--location[location]:location' '--type[type]:type' '--description[description]:text' \
        '--max-attendees[capacity]:n' '--budget[budget]:amount' \
        '--status[rsvp]:status:(attending not-attending maybe)'
      ;;
    approvals)
      _arguments -C $common '1: :(approve reject)' '--notes[notes]:text' '--reason[reason]:text'
      ;;
    event-approvals)
      _arguments -C $common '1: :(add)' \
        '--status[decision]:status:(approved rejected)' '--remarks[remarks]:text'
      ;;
    reports)
      _arguments -C $common '1: :(generate approve reject export)' \
        '--title[title]:title' '--type[type]:type' '--content[json content]:json' \
        '--reason[reason]:text' '--format[format]:format:(csv pdf)' '--out[file]:file:_files'
      ;;
    notifications)
      _arguments -C $common '1: :(count read rm watch)' '--all[all notifications]' \
        '--interval[poll interval]:duration'
      ;;
    clubs)
      _arguments -C $common '1: :(add)' '--name[name]:name' '--university-id[university]:id'
      ;;
    administrations)
      _arguments -C $common '1: :(add)' '--university-id[university]:id' \
        '--name[name]:name' '--email[email]:email' '--phone[phone]:phone'
      ;;
    dashboard)
      _arguments -C $common '1: :(growth attendance financial custom)' \
        '(-p --period)'{-p,--period}'[period]:period:(week month year)' \
        '*'{-m,--metric}'[metric]:metric' '*'{-w,--where}'[filter]:key=value'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _clubpulse clubpulse
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	w := writer(cmd)
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(w, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(w, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: clubpulse completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "clubpulse completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
