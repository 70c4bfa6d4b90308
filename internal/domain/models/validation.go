package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const stallHoursLayout = "3:04 PM"

// NormalizeFishName trims name and rejects empty names or names that cannot
// be used as a document id.
func NormalizeFishName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("fish name is required: %w", ErrValidation)
	}
	if strings.Contains(name, "/") {
		return "", fmt.Errorf("fish name %q must not contain '/': %w", name, ErrValidation)
	}
	return name, nil
}

// ValidatePrice rejects negative and non-finite prices.
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return fmt.Errorf("price must be a non-negative number: %w", ErrValidation)
	}
	return nil
}

// MaxQuantity is the largest quantity a device may report for one entry.
const MaxQuantity = 1_000_000

// ValidateQuantity rejects negative and out-of-range device readings.
func ValidateQuantity(qty int) error {
	if qty < 0 || qty > MaxQuantity {
		return fmt.Errorf("quantity must be between 0 and %d: %w", MaxQuantity, ErrValidation)
	}
	return nil
}

// ParseStallHours parses "h:mm AM - h:mm PM". Opening must be strictly before
// closing on the same day.
func ParseStallHours(hours string) (opens, closes time.Time, err error) {
	parts := strings.Split(hours, "-")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("stall hours %q must look like 6:00 AM - 6:00 PM: %w", hours, ErrValidation)
	}

	opens, err = time.Parse(stallHoursLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("stall opening time %q: %w", parts[0], ErrValidation)
	}
	closes, err = time.Parse(stallHoursLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("stall closing time %q: %w", parts[1], ErrValidation)
	}
	if !opens.Before(closes) {
		return time.Time{}, time.Time{}, fmt.Errorf("stall must open before it closes: %w", ErrValidation)
	}
	return opens, closes, nil
}
