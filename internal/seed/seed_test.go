package seed

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bloodflow/m/domain"
)

func TestDonors_CanonicalRoster(t *testing.T) {
	donors := Donors()
	require.Len(t, donors, 11)
	assert.Equal(t, "d1", donors[0].ID)
	assert.Equal(t, "Alice Johnson", donors[0].Name)

	ids := make(map[string]bool)
	for _, d := range donors {
		assert.True(t, d.BloodGroup.Valid(), d.ID)
		assert.False(t, ids[d.ID], "duplicate id %s", d.ID)
		ids[d.ID] = true
	}

	// callers get their own copy
	donors[0].Name = "changed"
	assert.Equal(t, "Alice Johnson", Donors()[0].Name)
}

func TestReadDonors(t *testing.T) {
	csv := strings.Join([]string{
		"id,name,blood_group,contact,last_donation",
		"x1,Maria Lopez,O-,555-0200,2024-08-01",
		"x2,,A+,555-0201,2024-08-02",
		"x3,Tom Reed,Q+,555-0202,2024-08-03",
		"x4,Sam Hill,B+,555-0203,08/04/2024",
		"x5,Ann Lee,ab+,555-0204,2024-08-05",
		"x1,Maria Again,O-,555-0205,2024-08-06",
		"short,row",
	}, "\n")

	donors, err := ReadDonors(strings.NewReader(csv), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, donors, 2)
	assert.Equal(t, domain.Donor{ID: "x1", Name: "Maria Lopez", BloodGroup: domain.ONegative, Contact: "555-0200", LastDonation: "2024-08-01"}, donors[0])
	assert.Equal(t, domain.ABPositive, donors[1].BloodGroup)
}

func TestReadDonors_EmptyInput(t *testing.T) {
	_, err := ReadDonors(strings.NewReader(""), zap.NewNop())
	assert.Error(t, err)
}

func TestLoadDonorsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donors.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name,blood_group,contact,last_donation\nz1,Zoe Park,A-,555-0300,2024-09-09\n"), 0o600))

	donors, err := LoadDonorsCSV(path, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, donors, 1)
	assert.Equal(t, "Zoe Park", donors[0].Name)

	_, err = LoadDonorsCSV(filepath.Join(t.TempDir(), "missing.csv"), zap.NewNop())
	assert.Error(t, err)
}

func TestRandomInventory(t *testing.T) {
	items := RandomInventory(rand.New(rand.NewSource(42)))
	require.Len(t, items, 8)
	for i, item := range items {
		assert.Equal(t, domain.BloodGroups[i], item.BloodGroup)
		assert.GreaterOrEqual(t, item.Units, int64(5))
		assert.LessOrEqual(t, item.Units, int64(24))
	}
}

func TestFixedInventory(t *testing.T) {
	items := FixedInventory(7)
	require.Len(t, items, 8)
	for _, item := range items {
		assert.Equal(t, int64(7), item.Units)
	}
	for _, item := range FixedInventory(-3) {
		assert.Zero(t, item.Units)
	}
}
