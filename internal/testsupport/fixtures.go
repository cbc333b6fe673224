package testsupport

import (
	"testing"
	"time"

	"inspectline/internal/config"
	"inspectline/internal/domain"
)

var (
	Supervisor = domain.User{ID: "u-sup", Name: "Meera", Email: "meera@example.com", Department: "HSE", Role: "supervisor"}
	Raj        = domain.User{ID: "u-raj", Name: "Raj", Email: "raj@example.com", Department: "Fire & Safety", Role: "inspector"}
	Anita      = domain.User{ID: "u-anita", Name: "Anita", Email: "anita@example.com", Department: "Maintenance", Role: "inspector"}
)

// BASets returns a small BA-set catalog including BA-SET-042.
func BASets() []domain.Asset {
	return []domain.Asset{
		{ID: "BA-SET-041", Name: "Drager PSS 3000", SerialNumber: "SN-1041", Zone: "Zone A", Location: "Control room"},
		{ID: "BA-SET-042", Name: "Drager PSS 3000", SerialNumber: "SN-1042", Zone: "Zone B", Location: "Compressor house"},
		{ID: "BA-SET-043", Name: "MSA AirGo", SerialNumber: "SN-1043", Zone: "Zone C", Location: "Jetty"},
	}
}

func SafetyKits() []domain.Asset {
	return []domain.Asset{
		{ID: "SK-7", Name: "Workshop kit", Zone: "Zone A", Location: "Workshop"},
		{ID: "SK-9", Name: "Lab kit", Zone: "Zone D", Location: "Laboratory"},
	}
}

// FullChecklist answers every BA-set item with OK except the overrides.
func FullChecklist(overrides map[string]domain.CheckResult) map[string]domain.CheckResult {
	out := make(map[string]domain.CheckResult, len(domain.BAChecklistItems))
	for _, item := range domain.BAChecklistItems {
		out[item] = domain.CheckOK
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// FixedClock returns a clock that always reports ts.
func FixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

// NewConfig returns the default configuration with a server bound to a free port.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	return cfg
}
