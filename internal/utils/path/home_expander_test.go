package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/lighthouse-runner/internal/utils/path"
)

const (
	homeExpanderTestHomeDirectoryConstant = "/home/auditor"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name          string
		provider      pathutils.HomeDirectoryProvider
		candidatePath string
		expectedPath  string
	}{
		{
			name:          "bare tilde",
			candidatePath: "~",
			expectedPath:  homeExpanderTestHomeDirectoryConstant,
		},
		{
			name:          "tilde prefix",
			candidatePath: "~/.local/bin/lighthouse",
			expectedPath:  filepath.Join(homeExpanderTestHomeDirectoryConstant, ".local", "bin", "lighthouse"),
		},
		{
			name:          "absolute path untouched",
			candidatePath: "/usr/bin/node",
			expectedPath:  "/usr/bin/node",
		},
		{
			name:          "other user untouched",
			candidatePath: "~builder/report.json",
			expectedPath:  "~builder/report.json",
		},
		{
			name:          "empty path untouched",
			candidatePath: "",
			expectedPath:  "",
		},
		{
			name: "lookup failure leaves path",
			provider: func() (string, error) {
				return "", errors.New("no home")
			},
			candidatePath: "~/report.html",
			expectedPath:  "~/report.html",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			provider := testCase.provider
			if provider == nil {
				provider = func() (string, error) { return homeExpanderTestHomeDirectoryConstant, nil }
			}
			expander := pathutils.NewHomeExpanderWithProvider(provider)
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidatePath))
		})
	}
}

func TestHomeExpanderResolvesHomeDirectoryOnce(testInstance *testing.T) {
	lookupCount := 0
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		lookupCount++
		return homeExpanderTestHomeDirectoryConstant, nil
	})

	expander.Expand("~/first")
	expander.Expand("~/second")
	require.Equal(testInstance, 1, lookupCount)

	var nilExpander *pathutils.HomeExpander
	require.Equal(testInstance, "~/report.json", nilExpander.Expand("~/report.json"))
}
