package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"inspectline/internal/domain"
)

// Seed is the YAML document that preloads the asset catalog and the user directory.
type Seed struct {
	BASets     []seedAsset `yaml:"ba_sets"`
	SafetyKits []seedAsset `yaml:"safety_kits"`
	Users      []seedUser  `yaml:"users"`
}

type seedAsset struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	SerialNumber    string `yaml:"serial_number"`
	Zone            string `yaml:"zone"`
	Location        string `yaml:"location"`
	LastServiceDate string `yaml:"last_service_date"`
	NextServiceDate string `yaml:"next_service_date"`
}

type seedUser struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Email      string `yaml:"email"`
	Department string `yaml:"department"`
	Role       string `yaml:"role"`
}

func (a seedAsset) asset() domain.Asset {
	return domain.Asset{
		ID:              a.ID,
		Name:            a.Name,
		SerialNumber:    a.SerialNumber,
		Zone:            a.Zone,
		Location:        a.Location,
		LastServiceDate: a.LastServiceDate,
		NextServiceDate: a.NextServiceDate,
	}
}

func (u seedUser) user() domain.User {
	return domain.User{ID: u.ID, Name: u.Name, Email: u.Email, Department: u.Department, Role: u.Role}
}

func ParseSeed(data []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("invalid seed yaml: %w", err)
	}
	return s, nil
}

func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, err
	}
	return ParseSeed(data)
}

// Apply upserts every seeded asset and user.
func (s Store) Apply(ctx context.Context, seed Seed) error {
	for _, a := range seed.BASets {
		if err := s.UpsertAsset(ctx, KindBASet, a.asset()); err != nil {
			return fmt.Errorf("seed ba set %s: %w", a.ID, err)
		}
	}
	for _, a := range seed.SafetyKits {
		if err := s.UpsertAsset(ctx, KindSafetyKit, a.asset()); err != nil {
			return fmt.Errorf("seed safety kit %s: %w", a.ID, err)
		}
	}
	for _, u := range seed.Users {
		if err := s.UpsertUser(ctx, u.user()); err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	return nil
}
