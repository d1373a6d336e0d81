package core

import (
	"os"
	"os/user"
	"regexp"
	"strconv"
	"strings"

	"github.com/josephlewis42/rush/core/state"
)

const DefaultPrompt = `\u@\h:\w\$ `

var (
	unescapeOctal   = regexp.MustCompile(`\\0[0-7][0-7]?[0-7]?`)
	unescapeHex     = regexp.MustCompile(`\\x[0-9a-fA-F][0-9a-fA-F]?`)
	unescapeReplace = strings.NewReplacer(
		`\n`, "\n", // newline
		`\r`, "\r", // carriage return
		`\t`, "\t", // horizontal tab
		`\\`, `\`, // backslash literal
		`\a`, "\a", // alert
		`\e`, "\033", // escape
	)
)

func unescape(s string) string {
	s = unescapeReplace.Replace(s)
	s = unescapeOctal.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseUint(arg[2:], 8, 8)
		if err != nil {
			return arg
		}
		return string([]byte{byte(out)})
	})
	s = unescapeHex.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseUint(arg[2:], 16, 8)
		if err != nil {
			return arg
		}
		return string([]byte{byte(out)})
	})
	return s
}

// promptInfo holds what the prompt escapes stand for.
type promptInfo struct {
	User string
	Host string
	Dir  string
	Home string
	Root bool
}

func expandPrompt(prompt string, info promptInfo) string {
	prompt = strings.ReplaceAll(prompt, `\u`, info.User)
	prompt = strings.ReplaceAll(prompt, `\h`, info.Host)

	pwd := info.Dir
	if home := info.Home; home != "" && (pwd == home || strings.HasPrefix(pwd, home+"/")) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}
	prompt = strings.ReplaceAll(prompt, `\w`, pwd)

	if info.Root {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	return unescape(prompt)
}

// Prompt renders PS1, or the configured prompt if it isn't set.
func (s *Shell) Prompt() string {
	prompt, ok := s.State.Vars.Lookup(state.EnvPrompt)
	if !ok {
		prompt = s.Config.Prompt
	}
	if prompt == "" {
		prompt = DefaultPrompt
	}

	info := promptInfo{
		User: s.State.Vars.Get(state.EnvUser),
		Home: s.State.Home(),
		Root: os.Geteuid() == 0,
	}
	if info.User == "" {
		if u, err := user.Current(); err == nil {
			info.User = u.Username
		}
	}
	if host, err := os.Hostname(); err == nil {
		info.Host, _, _ = strings.Cut(host, ".")
	}
	if wd, err := os.Getwd(); err == nil {
		info.Dir = wd
	}

	return expandPrompt(prompt, info)
}
