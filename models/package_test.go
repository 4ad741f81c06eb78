package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson"
)

func TestPackageDecodesLegacyFieldNames(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"name":         "Solar 1000",
		"minAmount":    100.0,
		"maxAmount":    5000.0,
		"durationDays": 150,
		"roi":          225.0,
		"cappingLimit": 1000.0,
		"status":       PackageActive,
	})
	require.NoError(t, err)

	var pkg Package
	require.NoError(t, bson.Unmarshal(raw, &pkg))

	assert.Equal(t, 225.0, pkg.TotalOutputPct)
	assert.Equal(t, 1000.0, pkg.PowerCapacity)
	assert.True(t, pkg.IsActive())
}

func TestPackageCanonicalFieldsWinOverLegacy(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"name":           "Solar 2000",
		"totalOutputPct": 200.0,
		"powerCapacity":  2000.0,
		"roi":            225.0,
		"cappingLimit":   1000.0,
	})
	require.NoError(t, err)

	var pkg Package
	require.NoError(t, bson.Unmarshal(raw, &pkg))

	assert.Equal(t, 200.0, pkg.TotalOutputPct)
	assert.Equal(t, 2000.0, pkg.PowerCapacity)
	// Missing status decodes as inactive, never accidentally investable.
	assert.False(t, pkg.IsActive())
}

func TestPackageDailyOutputRate(t *testing.T) {
	pkg := Package{TotalOutputPct: 225, DurationDays: 150}
	assert.InDelta(t, 0.015, pkg.DailyOutputRate(), 1e-12)

	zero := Package{TotalOutputPct: 225}
	assert.Equal(t, 0.0, zero.DailyOutputRate())
}

func TestPositionOpposite(t *testing.T) {
	assert.Equal(t, PositionRight, PositionLeft.Opposite())
	assert.Equal(t, PositionLeft, PositionRight.Opposite())
	assert.True(t, PositionLeft.Valid())
	assert.False(t, Position("middle").Valid())
}

func TestWalletTypeValidation(t *testing.T) {
	for _, wt := range DefaultWalletTypes {
		assert.True(t, wt.Valid(), string(wt))
	}
	assert.False(t, WalletType("savings").Valid())
}

func TestWalletAvailable(t *testing.T) {
	w := Wallet{Balance: 500, Reserved: 200}
	assert.Equal(t, 300.0, w.Available())
}
