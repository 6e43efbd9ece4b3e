package lighthouse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

const (
	configModulePrefixConstant         = "module.exports = "
	configTemporaryFilePatternConstant = "lighthouse-config-*.js"
	configExtendsKeyConstant           = "extends"
	configExtendsDefaultValueConstant  = "lighthouse:default"
	configSettingsKeyConstant          = "settings"
	configOnlyCategoriesKeyConstant    = "onlyCategories"
	configEncodeErrorTemplateConstant  = "unable to encode lighthouse config: %w"
	configCreateErrorTemplateConstant  = "unable to create lighthouse config file: %w"
	configWriteErrorTemplateConstant   = "unable to write lighthouse config file %s: %w"
	configRemoveErrorTemplateConstant  = "unable to remove lighthouse config file %s: %w"
	configMaterializedMessageConstant  = "lighthouse config written"
	configRemovedMessageConstant       = "lighthouse config removed"
	configRemoveFailedMessageConstant  = "lighthouse config could not be removed"
	configPathLogFieldConstant         = "config_path"
)

// ConfigDocument is a structured Lighthouse config, serialized as a JavaScript module.
type ConfigDocument map[string]any

// CategoryConfigDocument builds a config extending the Lighthouse defaults restricted to categories.
func CategoryConfigDocument(categories []string) ConfigDocument {
	onlyCategories := append([]string{}, categories...)
	return ConfigDocument{
		configExtendsKeyConstant: configExtendsDefaultValueConstant,
		configSettingsKeyConstant: map[string]any{
			configOnlyCategoriesKeyConstant: onlyCategories,
		},
	}
}

// RenderConfigModule produces the file content Lighthouse loads for a config document.
func RenderConfigModule(document ConfigDocument) ([]byte, error) {
	encoded, encodeError := encodeJSON(document)
	if encodeError != nil {
		return nil, fmt.Errorf(configEncodeErrorTemplateConstant, encodeError)
	}
	content := append([]byte(configModulePrefixConstant), encoded...)
	return content, nil
}

// encodeJSON renders value as single-line JSON without HTML escaping, so values
// such as cookies reach Lighthouse unchanged.
func encodeJSON(value any) ([]byte, error) {
	var encoded bytes.Buffer
	encoder := json.NewEncoder(&encoded)
	encoder.SetEscapeHTML(false)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return nil, encodeError
	}
	return bytes.TrimRight(encoded.Bytes(), "\n"), nil
}

// SetConfigPath points Lighthouse at a caller-owned config file. The Auditor never deletes it.
func (auditor *Auditor) SetConfigPath(path string) *Auditor {
	auditor.releaseOwnedConfig()
	auditor.configDocument = nil
	auditor.configPath = path
	return auditor
}

// SetConfigDocument stores a structured config that is written to an Auditor-owned
// temporary file the first time a command is resolved.
func (auditor *Auditor) SetConfigDocument(document ConfigDocument) *Auditor {
	auditor.releaseOwnedConfig()
	auditor.configPath = ""
	auditor.configDocument = document
	return auditor
}

// ClearConfig removes any config source.
func (auditor *Auditor) ClearConfig() *Auditor {
	auditor.releaseOwnedConfig()
	auditor.configDocument = nil
	auditor.configPath = ""
	return auditor
}

// ConfigPath returns the effective config path; empty when no config is set or a
// document has not been written yet.
func (auditor *Auditor) ConfigPath() string {
	return auditor.configPath
}

// Close removes the temporary config file owned by the Auditor. It is safe to call repeatedly.
// A document that was never written is discarded as well, so a closed Auditor
// does not create new temporary files.
func (auditor *Auditor) Close() error {
	auditor.configDocument = nil
	if len(auditor.ownedConfigPath) == 0 {
		return nil
	}
	ownedPath := auditor.ownedConfigPath
	auditor.ownedConfigPath = ""
	auditor.configPath = ""

	if removeError := removeConfigFile(ownedPath); removeError != nil {
		return fmt.Errorf(configRemoveErrorTemplateConstant, ownedPath, removeError)
	}
	auditor.logger.Debug(configRemovedMessageConstant, zap.String(configPathLogFieldConstant, ownedPath))
	return nil
}

// resolveConfigPath writes a pending config document to disk and returns the effective path.
func (auditor *Auditor) resolveConfigPath() (string, error) {
	if auditor.configDocument == nil || len(auditor.ownedConfigPath) > 0 {
		return auditor.configPath, nil
	}

	content, renderError := RenderConfigModule(auditor.configDocument)
	if renderError != nil {
		return "", renderError
	}

	configFile, createError := os.CreateTemp(auditor.temporaryDirectory, configTemporaryFilePatternConstant)
	if createError != nil {
		return "", fmt.Errorf(configCreateErrorTemplateConstant, createError)
	}
	configFilePath := configFile.Name()

	_, writeError := configFile.Write(content)
	closeError := configFile.Close()
	if writeError = errors.Join(writeError, closeError); writeError != nil {
		_ = removeConfigFile(configFilePath)
		return "", fmt.Errorf(configWriteErrorTemplateConstant, configFilePath, writeError)
	}

	auditor.ownedConfigPath = configFilePath
	auditor.configPath = configFilePath
	auditor.logger.Debug(configMaterializedMessageConstant, zap.String(configPathLogFieldConstant, configFilePath))
	return configFilePath, nil
}

func (auditor *Auditor) releaseOwnedConfig() {
	if len(auditor.ownedConfigPath) == 0 {
		return
	}
	ownedPath := auditor.ownedConfigPath
	auditor.ownedConfigPath = ""
	if auditor.configPath == ownedPath {
		auditor.configPath = ""
	}

	if removeError := removeConfigFile(ownedPath); removeError != nil {
		auditor.logger.Warn(configRemoveFailedMessageConstant, zap.String(configPathLogFieldConstant, ownedPath), zap.Error(removeError))
		return
	}
	auditor.logger.Debug(configRemovedMessageConstant, zap.String(configPathLogFieldConstant, ownedPath))
}

func removeConfigFile(path string) error {
	removeError := os.Remove(path)
	if removeError == nil || errors.Is(removeError, fs.ErrNotExist) {
		return nil
	}
	return removeError
}
