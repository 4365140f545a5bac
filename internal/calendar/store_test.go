package calendar

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "calendar.yaml"))
}

func storeTestDocument() *Document {
	return &Document{
		Schedule: ScheduleConfig{
			Timezone:     "Europe/Berlin",
			SlotDuration: 30,
			Holidays:     "DE",
			Weekly: []WeeklyRule{
				{
					Days: []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday},
					Slots: []TimeRange{
						{Start: TimeOfDay{Hour: 9}, End: TimeOfDay{Hour: 12}},
						{Start: TimeOfDay{Hour: 13}, End: TimeOfDay{Hour: 17}},
					},
				},
			},
		},
		Blocked: []BlockedInterval{
			{
				Date:   Date{Year: 2026, Month: time.September, Day: 1},
				Start:  TimeOfDay{Hour: 9},
				End:    TimeOfDay{Hour: 9, Minute: 30},
				Reason: "meeting with jane@example.com",
			},
		},
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := tempStore(t)

	require.NoError(t, store.Save(storeTestDocument()))
	require.True(t, store.Exists())

	loaded, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", loaded.Schedule.Timezone)
	assert.Equal(t, 30, loaded.Schedule.SlotDuration)
	assert.Equal(t, "DE", loaded.Schedule.Holidays)
	require.Len(t, loaded.Schedule.Weekly, 1)
	assert.Len(t, loaded.Schedule.Weekly[0].Days, 5)
	require.Len(t, loaded.Blocked, 1)
	assert.Equal(t, "meeting with jane@example.com", loaded.Blocked[0].Reason)
	assert.Equal(t, "09:00:00", loaded.Blocked[0].Start.String())
}

func TestStore_SaveIsDeterministic(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, store.Save(storeTestDocument()))

	first, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NoError(t, store.Save(loaded))

	second, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second), "save-load-save should be byte identical")
}

func TestStore_Load_MissingFile(t *testing.T) {
	store := tempStore(t)

	_, err := store.Load()
	require.Error(t, err)
	assert.True(t, IsKind(err, KindCalendarNotFound), "got kind %v", KindOf(err))
}

func TestStore_Load_MalformedYAML(t *testing.T) {
	store := tempStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("schedule: [not a mapping"), 0o600))

	_, err := store.Load()
	require.Error(t, err)
	assert.True(t, IsKind(err, KindCalendarParseError), "got kind %v", KindOf(err))
}

func TestStore_Load_UnknownField(t *testing.T) {
	store := tempStore(t)
	content := `schedule:
  timezone: Europe/Berlin
  slot_duration: 30
  surprise_field: true
blocked: []
`
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o600))

	_, err := store.Load()
	require.Error(t, err)
	assert.True(t, IsKind(err, KindCalendarParseError), "got kind %v", KindOf(err))
}

func TestStore_Load_InvalidSchedule(t *testing.T) {
	store := tempStore(t)
	content := `schedule:
  timezone: Europe/Berlin
  slot_duration: -5
blocked: []
`
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o600))

	_, err := store.Load()
	require.Error(t, err)
	assert.True(t, IsKind(err, KindCalendarParseError), "got kind %v", KindOf(err))
}

func TestStore_Save_RejectsInvalidDocument(t *testing.T) {
	store := tempStore(t)

	doc := storeTestDocument()
	doc.Schedule.SlotDuration = 0

	err := store.Save(doc)
	require.Error(t, err)
	assert.False(t, store.Exists(), "nothing should be written for an invalid document")
}

func TestStore_Save_CreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "nested", "deeper", "calendar.yaml"))

	require.NoError(t, store.Save(storeTestDocument()))
	assert.True(t, store.Exists())
}
