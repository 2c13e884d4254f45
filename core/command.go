package core

import "strings"

// BuildCommand substitutes every non-overlapping occurrence of placeholder in
// template with the token, shell-quoted unless quoting is disabled. The
// template is validated to contain the placeholder once per run, before any
// token is processed, by config.Config.Validate.
func BuildCommand(template, placeholder, token string, quote bool) string {
	arg := token
	if quote {
		arg = Quote(token)
	}
	return strings.ReplaceAll(template, placeholder, arg)
}
