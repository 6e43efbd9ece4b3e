package lighthouse

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const (
	outputFlagTemplateConstant         = "--output=%s"
	extraHeadersFlagPrefixConstant     = "--extra-headers="
	quietFlagConstant                  = "--quiet"
	onlyCategoriesFlagPrefixConstant   = "--only-categories="
	configPathFlagPrefixConstant       = "--config-path="
	categoryListSeparatorConstant      = ","
	commandLineSeparatorConstant       = " "
	headersEncodeErrorTemplateConstant = "unable to encode extra headers: %w"
	commandQuoteErrorTemplateConstant  = "unable to quote argument %q: %w"
)

// ResolveCommand builds the argument vector for auditing targetURL. Apart from
// writing a pending config document to disk once, it does not change the Auditor.
//
// Tokens appear in this order: runtime and tool paths, one --output per format,
// --extra-headers, --quiet, --only-categories, --config-path, the URL, then the
// recorded options. Empty tokens are dropped.
func (auditor *Auditor) ResolveCommand(targetURL string) ([]string, error) {
	tokens := []string{auditor.runtimePath, auditor.toolPath}

	for _, format := range auditor.outputFormats {
		tokens = append(tokens, fmt.Sprintf(outputFlagTemplateConstant, format))
	}

	if len(auditor.headers) > 0 {
		encodedHeaders, encodeError := encodeJSON(auditor.headers)
		if encodeError != nil {
			return nil, fmt.Errorf(headersEncodeErrorTemplateConstant, encodeError)
		}
		tokens = append(tokens, extraHeadersFlagPrefixConstant+string(encodedHeaders))
	}

	tokens = append(tokens, quietFlagConstant)

	if len(auditor.categories) > 0 {
		tokens = append(tokens, onlyCategoriesFlagPrefixConstant+strings.Join(auditor.categories, categoryListSeparatorConstant))
	}

	configPath, configError := auditor.resolveConfigPath()
	if configError != nil {
		return nil, configError
	}
	if len(configPath) > 0 {
		tokens = append(tokens, configPathFlagPrefixConstant+configPath)
	}

	tokens = append(tokens, targetURL)
	tokens = append(tokens, auditor.options.tokens()...)

	return filterEmptyTokens(tokens), nil
}

// ShellCommandLine renders the resolved command as one line safe to paste into a POSIX shell.
func (auditor *Auditor) ShellCommandLine(targetURL string) (string, error) {
	tokens, resolveError := auditor.ResolveCommand(targetURL)
	if resolveError != nil {
		return "", resolveError
	}

	quotedTokens := make([]string, 0, len(tokens))
	for _, token := range tokens {
		quotedToken, quoteError := syntax.Quote(token, syntax.LangPOSIX)
		if quoteError != nil {
			return "", fmt.Errorf(commandQuoteErrorTemplateConstant, token, quoteError)
		}
		quotedTokens = append(quotedTokens, quotedToken)
	}
	return strings.Join(quotedTokens, commandLineSeparatorConstant), nil
}

func filterEmptyTokens(tokens []string) []string {
	filtered := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) == 0 {
			continue
		}
		filtered = append(filtered, token)
	}
	return filtered
}
