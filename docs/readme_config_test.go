package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/lighthouse-runner/cmd/cli"
	"github.com/temirov/lighthouse-runner/internal/utils"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	readmeSnippetFileNameConstant    = "config.yaml"
	parentDirectoryReferenceConstant = ".."
	readmeEnvironmentPrefixConstant  = "READMELIGHTHOUSE"
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

var expectedConfigurationSections = []string{"common", "tools"}

func extractReadmeConfiguration(testInstance *testing.T) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : headerIndex+fenceEndRelativeIndex])
}

func TestReadmeConfigurationHasKnownSections(testInstance *testing.T) {
	snippetContent := extractReadmeConfiguration(testInstance)

	rawConfiguration := map[string]any{}
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippetContent), &rawConfiguration))

	sectionNames := make([]string, 0, len(rawConfiguration))
	for sectionName := range rawConfiguration {
		sectionNames = append(sectionNames, sectionName)
	}
	require.ElementsMatch(testInstance, expectedConfigurationSections, sectionNames)
}

func TestReadmeConfigurationLoads(testInstance *testing.T) {
	snippetContent := extractReadmeConfiguration(testInstance)

	configurationPath := filepath.Join(testInstance.TempDir(), readmeSnippetFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(snippetContent), 0o600))

	configurationLoader := utils.NewConfigurationLoader("config", "yaml", readmeEnvironmentPrefixConstant, nil)
	configurationLoader.SetEmbeddedConfiguration(cli.EmbeddedDefaultConfiguration())

	applicationConfiguration := cli.ApplicationConfiguration{}
	_, loadError := configurationLoader.LoadConfiguration(configurationPath, nil, &applicationConfiguration)
	require.NoError(testInstance, loadError)

	auditConfiguration := applicationConfiguration.Tools.Audit
	require.Equal(testInstance, "console", applicationConfiguration.Common.LogFormat)
	require.Equal(testInstance, []string{"performance", "accessibility"}, auditConfiguration.Categories)
	require.Equal(testInstance, 90*time.Second, auditConfiguration.Timeout)
	require.Equal(testInstance, []string{"--headless=new", "--no-sandbox"}, auditConfiguration.ChromeFlags)
	require.Equal(testInstance, map[string]string{"authorization": "Bearer example-token"}, auditConfiguration.Headers)
	require.True(testInstance, auditConfiguration.DisableNetworkThrottling)
	require.Equal(testInstance, "json", auditConfiguration.DefaultFormat)
}
