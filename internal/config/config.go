package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrMissingSetting marks a required configuration value that is absent.
// It is raised before any remote call is attempted.
var ErrMissingSetting = errors.New("required setting missing")

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string
	Currency   string
	Provider   ProviderSettings
}

// ProviderSettings is the Mollie provider configuration. The base fields date
// back to the order-API generation of the provider; ManualCapture is the v2
// extension field, resolved here at load time rather than via inheritance.
type ProviderSettings struct {
	ContinueURL string
	CancelURL   string
	ErrorURL    string
	CallbackURL string

	TestAPIKey string
	LiveAPIKey string
	TestMode   bool

	Locale         string
	PaymentMethods string // comma separated list of allowed mollie methods

	BillingAddressLine1PropertyAlias   string
	BillingAddressCityPropertyAlias    string
	BillingAddressStatePropertyAlias   string
	BillingAddressZipCodePropertyAlias string

	OrderLineProductTypePropertyAlias     string
	OrderLineProductCategoryPropertyAlias string

	ManualCapture bool
}

// APIKey returns the API key for the configured mode.
func (s ProviderSettings) APIKey() (string, error) {
	if s.TestMode {
		if s.TestAPIKey == "" {
			return "", fmt.Errorf("%w: MOLLIE_TEST_API_KEY", ErrMissingSetting)
		}
		return s.TestAPIKey, nil
	}

	if s.LiveAPIKey == "" {
		return "", fmt.Errorf("%w: MOLLIE_LIVE_API_KEY", ErrMissingSetting)
	}
	return s.LiveAPIKey, nil
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    os.Getenv("APP_PORT"),
		AppEnv:     os.Getenv("APP_ENV"),
		Currency:   os.Getenv("STORE_CURRENCY"),
		Provider: ProviderSettings{
			ContinueURL: os.Getenv("MOLLIE_CONTINUE_URL"),
			CancelURL:   os.Getenv("MOLLIE_CANCEL_URL"),
			ErrorURL:    os.Getenv("MOLLIE_ERROR_URL"),
			CallbackURL: os.Getenv("MOLLIE_CALLBACK_URL"),

			TestAPIKey: os.Getenv("MOLLIE_TEST_API_KEY"),
			LiveAPIKey: os.Getenv("MOLLIE_LIVE_API_KEY"),
			TestMode:   envBool("MOLLIE_TEST_MODE"),

			Locale:         os.Getenv("MOLLIE_LOCALE"),
			PaymentMethods: os.Getenv("MOLLIE_PAYMENT_METHODS"),

			BillingAddressLine1PropertyAlias:   os.Getenv("MOLLIE_BILLING_ADDRESS_LINE1_ALIAS"),
			BillingAddressCityPropertyAlias:    os.Getenv("MOLLIE_BILLING_ADDRESS_CITY_ALIAS"),
			BillingAddressStatePropertyAlias:   os.Getenv("MOLLIE_BILLING_ADDRESS_STATE_ALIAS"),
			BillingAddressZipCodePropertyAlias: os.Getenv("MOLLIE_BILLING_ADDRESS_ZIP_ALIAS"),

			OrderLineProductTypePropertyAlias:     os.Getenv("MOLLIE_ORDER_LINE_TYPE_ALIAS"),
			OrderLineProductCategoryPropertyAlias: os.Getenv("MOLLIE_ORDER_LINE_CATEGORY_ALIAS"),

			ManualCapture: envBool("MOLLIE_MANUAL_CAPTURE"),
		},
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return v
}
