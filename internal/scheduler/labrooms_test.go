package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/university-timetable-api/internal/models"
)

func TestEnsureVirtualLabRooms_CreatesOnePerGroupWithLabs(t *testing.T) {
	sessions := []Session{
		{GroupID: "g1", IsLab: true},
		{GroupID: "g1", IsLab: true},
		{GroupID: "g2", IsLab: false},
	}
	groups := map[string]models.StudentGroup{
		"g1": {ID: "g1", Size: 25},
		"g2": {ID: "g2", Size: 10},
	}

	created := EnsureVirtualLabRooms(sessions, groups, nil)
	require.Len(t, created, 1)
	assert.Equal(t, "LAB-Gg1", created[0].Name)
	assert.Equal(t, 25, created[0].Capacity)
	assert.Equal(t, "LAB", created[0].FurnitureType)
	assert.True(t, created[0].IsSynthetic)
}

func TestEnsureVirtualLabRooms_SkipsExisting(t *testing.T) {
	sessions := []Session{{GroupID: "g1", IsLab: true}}
	groups := map[string]models.StudentGroup{"g1": {ID: "g1", Size: 25}}
	existing := []models.Room{{Name: "LAB-Gg1"}}

	created := EnsureVirtualLabRooms(sessions, groups, existing)
	assert.Empty(t, created)
}

func TestEnsureVirtualLabRooms_DefaultCapacityWhenGroupSizeUnknown(t *testing.T) {
	sessions := []Session{{GroupID: "g1", IsLab: true}}
	groups := map[string]models.StudentGroup{"g1": {ID: "g1"}}

	created := EnsureVirtualLabRooms(sessions, groups, nil)
	require.Len(t, created, 1)
	assert.Equal(t, defaultSyntheticCapacity, created[0].Capacity)
}
