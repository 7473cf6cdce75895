package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/apptagent/internal/business"
	"github.com/ziadkadry99/apptagent/internal/llm"
)

// presetChoices are offered by the wizard; "none" leaves the business
// unconfigured until a client calls configure.
var presetChoices = []string{
	string(business.TypeDentist),
	string(business.TypeSalon),
	string(business.TypeDoctor),
	string(business.TypeGeneric),
	"none",
}

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

func validTimezone(s string) error {
	if _, err := time.LoadLocation(strings.TrimSpace(s)); err != nil {
		return errors.New("unknown timezone")
	}
	return nil
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to apptagent! Let's set up your booking assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []ProviderType{ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderMistral, ProviderOllama, ProviderOpenRouter, ProviderMiniMax},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	modelPrompt := promptui.Prompt{
		Label:   "Model",
		Default: llm.DefaultModels[providerStr],
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 2. Business.
	presetPrompt := promptui.Select{
		Label: "Business type",
		Items: presetChoices,
	}
	_, presetStr, err := presetPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("business type: %w", err)
	}
	if presetStr != "none" {
		profile, err := promptBusiness(business.Type(presetStr))
		if err != nil {
			return nil, err
		}
		cfg.Business = profile
	}

	// 3. Backends.
	calendarPrompt := promptui.Select{
		Label: "Calendar backend",
		Items: []Backend{BackendLocal, BackendGoogle},
	}
	_, calStr, err := calendarPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("calendar backend: %w", err)
	}
	cfg.Calendar.Backend = Backend(calStr)

	recordsPrompt := promptui.Select{
		Label: "Customer records backend",
		Items: []Backend{BackendLocal, BackendGoogle, BackendNone},
	}
	_, recStr, err := recordsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("records backend: %w", err)
	}
	cfg.Records.Backend = Backend(recStr)

	if cfg.Calendar.Backend == BackendGoogle || cfg.Records.Backend == BackendGoogle {
		credsPrompt := promptui.Prompt{
			Label: "Google service account JSON file (blank to run `apptagent auth google` later)",
		}
		if cfg.Google.CredentialsFile, err = credsPrompt.Run(); err != nil {
			return nil, fmt.Errorf("credentials file: %w", err)
		}
		if cfg.Records.Backend == BackendGoogle && cfg.Business != nil {
			sheetPrompt := promptui.Prompt{
				Label:    "Google Sheet ID for customer records",
				Validate: required("sheet id"),
			}
			if cfg.Business.SheetID, err = sheetPrompt.Run(); err != nil {
				return nil, fmt.Errorf("sheet id: %w", err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment (or .env) before starting apptagent.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// promptBusiness starts from the preset for t and asks for the names and
// timezone.
func promptBusiness(t business.Type) (*business.Profile, error) {
	preset := business.Preset(t, "", "")

	namePrompt := promptui.Prompt{
		Label:    "Business name",
		Default:  preset.BusinessName,
		Validate: required("business name"),
	}
	name, err := namePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("business name: %w", err)
	}

	assistantPrompt := promptui.Prompt{
		Label:    "Assistant name",
		Default:  preset.AssistantName,
		Validate: required("assistant name"),
	}
	assistant, err := assistantPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("assistant name: %w", err)
	}

	tzPrompt := promptui.Prompt{
		Label:    "Timezone",
		Default:  business.DefaultTimezone,
		Validate: validTimezone,
	}
	tz, err := tzPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	profile := business.Preset(t, strings.TrimSpace(name), strings.TrimSpace(assistant))
	profile.Timezone = strings.TrimSpace(tz)
	return &profile, nil
}
