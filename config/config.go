package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyMistBaseURL              = "mist.base_url"
	KeyExtractIDFieldName       = "extract.id_field_name"
	KeyExtractMinIdentifierLen  = "extract.min_identifier_length"
	KeyExtractSkipSheetKeywords = "extract.skip_sheet_keywords"
	KeyExtractTemplateKeyword   = "extract.template_sheet_keyword"
	KeyExtractSiteGroup         = "extract.site_group"
	KeyExtractColumnOffsets     = "extract.column_offsets"
	KeyGeocodeFailOnUnresolved  = "geocode.fail_on_unresolved"
	KeyGeocodeMaxAttempts       = "geocode.max_attempts"
)

type Config struct {
	Mist      MistConfig     `mapstructure:"mist" validate:"required"`
	Extract   ExtractConfig  `mapstructure:"extract"`
	Geocode   GeocodeConfig  `mapstructure:"geocode"`
	Templates TemplateConfig `mapstructure:"templates"`
}

type MistConfig struct {
	BaseURL  string `mapstructure:"base_url" validate:"required,url"`
	APIToken string `mapstructure:"api_token"`
	OrgID    string `mapstructure:"org_id"`
}

type ExtractConfig struct {
	IDFieldName          string         `mapstructure:"id_field_name"`
	MinIdentifierLength  int            `mapstructure:"min_identifier_length" validate:"min=1"`
	SkipSheetKeywords    []string       `mapstructure:"skip_sheet_keywords"`
	TemplateSheetKeyword string         `mapstructure:"template_sheet_keyword"`
	SiteGroup            string         `mapstructure:"site_group"`
	ColumnOffsets        map[string]int `mapstructure:"column_offsets"`
}

type GeocodeConfig struct {
	GoogleAPIKey     string `mapstructure:"google_api_key"`
	FailOnUnresolved bool   `mapstructure:"fail_on_unresolved"`
	MaxAttempts      int    `mapstructure:"max_attempts" validate:"min=1"`
}

type TemplateConfig struct {
	NetworkTemplateID string `mapstructure:"networktemplate_id"`
	GatewayTemplateID string `mapstructure:"gatewaytemplate_id"`
	RFTemplateID      string `mapstructure:"rftemplate_id"`
}

// SetDefaults sets default values on the global viper if not provided.
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it.
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# siteprov configuration
mist:
  base_url: "https://api.mist.com/api/v1"
  # api_token: set here or via MIST_API_TOKEN
  # org_id: ""   # omitted: first accessible org is used

extract:
  id_field_name: "Site ID"
  min_identifier_length: 4
  skip_sheet_keywords: ["template", "variables", "config"]
  template_sheet_keyword: "variables"
  site_group: "Default_Group"
  column_offsets:
    address: 1
    location: 2

geocode:
  # google_api_key: ""
  fail_on_unresolved: false
  max_attempts: 3

templates: {}
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateColumnOffsets(cfg.Extract.ColumnOffsets); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyMistBaseURL, "https://api.mist.com/api/v1")
	v.SetDefault(KeyExtractIDFieldName, "Site ID")
	v.SetDefault(KeyExtractMinIdentifierLen, 4)
	v.SetDefault(KeyExtractSkipSheetKeywords, []string{"template", "variables", "config"})
	v.SetDefault(KeyExtractTemplateKeyword, "variables")
	v.SetDefault(KeyExtractSiteGroup, "Default_Group")
	v.SetDefault(KeyExtractColumnOffsets, map[string]int{"address": 1, "location": 2})
	v.SetDefault(KeyGeocodeFailOnUnresolved, false)
	v.SetDefault(KeyGeocodeMaxAttempts, 3)
}

func validateColumnOffsets(offsets map[string]int) error {
	hasAddress := false
	for name, offset := range offsets {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return fmt.Errorf("validation failed: column_offsets contains an empty field name")
		}
		if offset == 0 {
			return fmt.Errorf("validation failed: column_offsets.%s must not be 0 (offset 0 is the identifier column)", trimmed)
		}
		if strings.EqualFold(trimmed, "address") {
			hasAddress = true
		}
	}
	if len(offsets) > 0 && !hasAddress {
		return fmt.Errorf("validation failed: column_offsets must map the required address field")
	}
	return nil
}
