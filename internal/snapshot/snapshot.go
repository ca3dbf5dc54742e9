package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"audiopilot/internal/config"
	"audiopilot/internal/ledger"
	"audiopilot/internal/logging"
	"audiopilot/internal/repair"
	"audiopilot/internal/room"
	"audiopilot/internal/services"
)

const stageName = "snapshot"

// Snapshot is the complete input of one cycle.
type Snapshot struct {
	Rooms   []room.Room
	Storage []string
	Ledger  ledger.Ledger
	// Issues lists room files that were skipped.
	Issues   []Issue
	LoadedAt time.Time
}

// Issue describes a room file that could not be used.
type Issue struct {
	Path    string `json:"path"`
	RoomID  string `json:"roomId,omitempty"`
	Message string `json:"message"`
}

// LedgerSource supplies the persisted ledger for a library.
type LedgerSource interface {
	LoadLedger(ctx context.Context, libraryID string, now func() time.Time) (ledger.Ledger, error)
}

// roomFile is the on-disk shape of a room document.
type roomFile struct {
	ID      string       `json:"id" yaml:"id" validate:"required_without=RoomID,excludesall=/\\"`
	RoomID  string       `json:"roomId" yaml:"roomId" validate:"excludesall=/\\"`
	Entries []room.Entry `json:"entries" yaml:"entries" validate:"dive"`
}

func (f roomFile) room() room.Room {
	id := strings.TrimSpace(f.ID)
	if id == "" {
		id = strings.TrimSpace(f.RoomID)
	}
	entries := f.Entries
	if entries == nil {
		entries = []room.Entry{}
	}
	return room.Room{ID: id, Entries: entries}
}

type manifestFile struct {
	Files []string `json:"files"`
}

// Loader reads snapshots from the configured locations.
type Loader struct {
	cfg       *config.Config
	ledger    LedgerSource
	logger    *slog.Logger
	validator *structValidator
	now       func() time.Time
}

// NewLoader builds a loader. A nil ledger source yields an empty ledger.
func NewLoader(cfg *config.Config, source LedgerSource, logger *slog.Logger) *Loader {
	return &Loader{
		cfg:       cfg,
		ledger:    source,
		logger:    logging.NewComponentLogger(logger, "snapshot"),
		validator: newStructValidator(),
		now:       time.Now,
	}
}

// Load reads rooms, storage, and the ledger.
func (l *Loader) Load(ctx context.Context) (Snapshot, error) {
	rooms, issues, err := l.LoadRooms(ctx, l.cfg.Paths.RoomsDir)
	if err != nil {
		return Snapshot{}, err
	}
	storage, err := l.LoadStorage(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	led := ledger.New(l.now)
	if l.ledger != nil {
		led, err = l.ledger.LoadLedger(ctx, l.cfg.Library.ID, l.now)
		if err != nil {
			return Snapshot{}, services.Wrap(services.ErrTransient, stageName, "load ledger", "read lifecycle ledger", err)
		}
	}

	l.logger.Info("snapshot loaded",
		logging.Int("rooms", len(rooms)),
		logging.Int("storage_files", len(storage)),
		logging.Int("ledger_entries", led.Len()),
		logging.Int("skipped_rooms", len(issues)),
	)
	return Snapshot{Rooms: rooms, Storage: storage, Ledger: led, Issues: issues, LoadedAt: l.now()}, nil
}

// LoadRooms parses every *.json, *.yaml, and *.yml file in dir, in name
// order. Rooms whose id repeats an earlier file are skipped.
func (l *Loader) LoadRooms(ctx context.Context, dir string) ([]room.Room, []Issue, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, stageName, "read rooms", dir, err)
	}

	rooms := []room.Room{}
	issues := []Issue{}
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !isRoomFile(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		path := filepath.Join(dir, entry.Name())
		file, err := decodeRoomFile(path)
		if err != nil {
			return nil, nil, services.Wrap(services.ErrValidation, stageName, "parse room", path, err)
		}
		r := file.room()
		if err := l.validator.validate(file); err != nil {
			issues = append(issues, l.skip(path, r.ID, err.Error()))
			continue
		}
		if first, dup := seen[r.ID]; dup {
			issues = append(issues, l.skip(path, r.ID, "duplicate room id (first defined in "+filepath.Base(first)+")"))
			continue
		}
		seen[r.ID] = path
		rooms = append(rooms, r)
	}
	return rooms, issues, nil
}

func (l *Loader) skip(path, roomID, message string) Issue {
	logging.WarnWithContext(l.logger, "room file skipped", "room_skipped",
		logging.String("path", path),
		logging.String(logging.FieldRoomID, roomID),
		logging.String("reason", message),
		logging.String(logging.FieldErrorHint, "fix the room file and rerun"),
		logging.String(logging.FieldImpact, "room excluded from this cycle"),
	)
	return Issue{Path: path, RoomID: roomID, Message: message}
}

func isRoomFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func decodeRoomFile(path string) (roomFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return roomFile{}, err
	}
	var file roomFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		if err := decoder.Decode(&file); err != nil {
			return roomFile{}, err
		}
	default:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return roomFile{}, err
		}
	}
	return file, nil
}

// LoadStorage returns the storage listing from the manifest file when one
// is configured, otherwise from the top level of the audio directory.
// Quarantine folders and hidden files are never listed.
func (l *Loader) LoadStorage(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path := l.cfg.Paths.ManifestFile; path != "" {
		return readManifest(path)
	}
	return listAudioDir(l.cfg.Paths.AudioDir)
}

func readManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "read manifest", path, err)
	}
	var manifest manifestFile
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "parse manifest", path, err)
	}
	files := make([]string, 0, len(manifest.Files))
	for _, file := range manifest.Files {
		file = strings.TrimSpace(file)
		if file == "" || quarantined(file) {
			continue
		}
		files = append(files, file)
	}
	return files, nil
}

func listAudioDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "read audio dir", dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		files = append(files, name)
	}
	slices.Sort(files)
	return files, nil
}

func quarantined(file string) bool {
	dir, _, ok := strings.Cut(filepath.ToSlash(file), "/")
	return ok && (dir == repair.OrphanDir || dir == repair.DuplicateDir)
}

// Load is a convenience wrapper around NewLoader(...).Load.
func Load(ctx context.Context, cfg *config.Config, source LedgerSource, logger *slog.Logger) (Snapshot, error) {
	if cfg == nil {
		return Snapshot{}, services.Wrap(services.ErrConfiguration, stageName, "load", "config is nil", nil)
	}
	return NewLoader(cfg, source, logger).Load(ctx)
}

// Describe renders a short human summary of the snapshot.
func (s Snapshot) Describe() string {
	return fmt.Sprintf("%d rooms, %d files, %d ledger entries", len(s.Rooms), len(s.Storage), s.Ledger.Len())
}
