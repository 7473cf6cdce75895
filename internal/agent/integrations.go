package agent

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	"github.com/ziadkadry99/apptagent/internal/auth"
	"github.com/ziadkadry99/apptagent/internal/business"
	"github.com/ziadkadry99/apptagent/internal/calendar"
	"github.com/ziadkadry99/apptagent/internal/db"
	"github.com/ziadkadry99/apptagent/internal/llm"
	"github.com/ziadkadry99/apptagent/internal/records"
)

// Backend names.
const (
	BackendLocal  = "local"
	BackendGoogle = "google"
	BackendNone   = "none"
)

// Backends builds integrations from named backends. Local backends share
// DB; Google backends authenticate with the JSON at CredentialsFile, or
// with the stored OAuth token when no file is set.
type Backends struct {
	Calendar        string
	Records         string
	DB              *db.DB
	CredentialsFile string
	OAuth           *auth.GoogleCredentials
	LLM             llm.Provider

	// ClientOptions are appended to every Google client; tests point them
	// at a fake endpoint.
	ClientOptions []option.ClientOption
}

// Build implements IntegrationFactory.
func (b *Backends) Build(ctx context.Context, profile business.Profile) (Integrations, error) {
	integ := Integrations{LLM: b.LLM}

	var googleOpts []option.ClientOption
	needGoogle := b.Calendar == BackendGoogle || b.Records == BackendGoogle
	if needGoogle {
		opts, err := b.googleOptions(ctx)
		if err != nil {
			return Integrations{}, err
		}
		googleOpts = opts
	}

	switch b.Calendar {
	case BackendLocal, "":
		if b.DB == nil {
			return Integrations{}, fmt.Errorf("local calendar needs a database")
		}
		integ.Calendar = calendar.NewSQLiteCalendar(b.DB, profile.CalendarID)
	case BackendGoogle:
		cal, err := calendar.NewGoogleCalendar(ctx, profile.CalendarID, googleOpts...)
		if err != nil {
			return Integrations{}, err
		}
		integ.Calendar = cal
	default:
		return Integrations{}, fmt.Errorf("unknown calendar backend %q", b.Calendar)
	}

	switch b.Records {
	case BackendNone, "":
	case BackendLocal:
		if b.DB == nil {
			return Integrations{}, fmt.Errorf("local records need a database")
		}
		integ.Records = records.NewSQLiteStore(b.DB, profile.SheetID)
	case BackendGoogle:
		if profile.SheetID == "" {
			return Integrations{}, fmt.Errorf("google records need a sheet_id in the business profile")
		}
		store, err := records.NewSheetsStore(ctx, profile.SheetID, profile.BusinessType, googleOpts...)
		if err != nil {
			return Integrations{}, err
		}
		if err := store.Setup(ctx); err != nil {
			return Integrations{}, fmt.Errorf("preparing sheet: %w", err)
		}
		integ.Records = store
	default:
		return Integrations{}, fmt.Errorf("unknown records backend %q", b.Records)
	}
	return integ, nil
}

func (b *Backends) googleOptions(ctx context.Context) ([]option.ClientOption, error) {
	opts := append([]option.ClientOption(nil), b.ClientOptions...)
	if len(opts) > 0 && b.CredentialsFile == "" && b.OAuth == nil {
		return opts, nil
	}
	authOpts, err := auth.ClientOptions(ctx, b.CredentialsFile, b.OAuth)
	if err != nil {
		return nil, err
	}
	return append(opts, authOpts...), nil
}
