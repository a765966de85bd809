// Package storage keeps the boot record and per-family boot counters in
// LittleFS on the RP2040 flash.
// It handles atomic writes, version checking, and cleanup of temporary files.
package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/config"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"

	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/littlefs"
)

const (
	dataDir       = "/retropad"
	familiesDir   = "/retropad/families"
	bootFile      = "/retropad/boot.bin"
	tempSuffix    = ".tmp"
	counterSuffix = ".bin"
	counterSize   = 4
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidRecord = errors.New("invalid record data")
)

// Manager handles record persistence using LittleFS.
type Manager struct {
	fs         *littlefs.LFS
	blockDev   tinyfs.BlockDevice
	mounted    bool
	cleanupErr error
}

// Stats provides information about storage usage.
type Stats struct {
	TotalSpace  int64
	UsedSpace   int64
	FreeSpace   int64
	HasBoot     bool
	FamilyCount int
}

// New initializes the storage system with the given block device.
// It mounts the filesystem and performs boot-time cleanup.
// If format is true and mount fails, it will format the filesystem.
func New(blockDev tinyfs.BlockDevice, format bool) (*Manager, error) {
	lfs := littlefs.New(blockDev)

	// Conservative settings for RP2040 flash
	lfs.Configure(&littlefs.Config{
		CacheSize:     512,
		LookaheadSize: 128,
	})

	err := lfs.Mount()
	if err != nil {
		if !format {
			return nil, err
		}
		if err := lfs.Format(); err != nil {
			return nil, err
		}
		if err := lfs.Mount(); err != nil {
			return nil, err
		}
	}

	m := &Manager{
		fs:       lfs,
		blockDev: blockDev,
		mounted:  true,
	}

	// Leftover temp files only cost space; keep going if cleanup fails.
	m.cleanupErr = m.bootCleanup()

	needsWipe, err := m.checkVersion()
	if err != nil {
		// Unreadable record: start over.
		needsWipe = true
	}

	if needsWipe {
		if err := m.wipeAll(); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Close unmounts the filesystem.
func (m *Manager) Close() error {
	if m.mounted {
		m.mounted = false
		return m.fs.Unmount()
	}
	return nil
}

// bootCleanup removes temporary files left over from interrupted writes.
func (m *Manager) bootCleanup() error {
	for _, dir := range []string{dataDir, familiesDir} {
		entries, err := m.readDir(dir)
		if err != nil {
			if isNotExist(err) {
				continue
			}
			return err
		}

		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasSuffix(name, tempSuffix) {
				continue
			}
			if err := m.fs.Remove(path.Join(dir, name)); err != nil {
				return fmt.Errorf("remove %s: %w", name, err)
			}
		}
	}
	return nil
}

// CleanupErr returns the error of the boot-time temp file cleanup, if any.
// The manager stays usable when it is set.
func (m *Manager) CleanupErr() error {
	return m.cleanupErr
}

// readDir reads the directory entries at the given path.
func (m *Manager) readDir(dirPath string) ([]os.FileInfo, error) {
	f, err := m.fs.Open(dirPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !f.IsDir() {
		return nil, errors.New("not a directory")
	}

	return f.Readdir(-1)
}

// checkVersion reads the boot record and checks if its version matches.
// Returns true if records should be wiped (version mismatch).
func (m *Manager) checkVersion() (bool, error) {
	var rec config.BootRecord
	if err := m.LoadBoot(&rec); err != nil {
		if err == ErrNotFound {
			// First boot
			return false, nil
		}
		return false, err
	}

	return rec.Version != config.CurrentVersion, nil
}

// wipeAll removes every record.
func (m *Manager) wipeAll() error {
	entries, err := m.readDir(familiesDir)
	if err == nil {
		for _, entry := range entries {
			m.fs.Remove(path.Join(familiesDir, entry.Name()))
		}
	}

	m.fs.Remove(bootFile)

	return nil
}

// ensureDirs creates the data directories if they don't exist.
func (m *Manager) ensureDirs() error {
	if err := m.fs.Mkdir(dataDir, 0755); err != nil && !isExist(err) {
		return err
	}
	if err := m.fs.Mkdir(familiesDir, 0755); err != nil && !isExist(err) {
		return err
	}
	return nil
}

// isExist checks if an error is "already exists".
// LittleFS errors don't always match os.IsExist, so we check the message too.
func isExist(err error) bool {
	if err == nil {
		return false
	}
	if os.IsExist(err) {
		return true
	}
	return strings.Contains(err.Error(), "already exists")
}

// isNotExist is isExist for missing entries.
func isNotExist(err error) bool {
	if err == nil {
		return false
	}
	if os.IsNotExist(err) {
		return true
	}
	return strings.Contains(err.Error(), "No directory entry")
}

// readFile reads exactly size bytes from filepath.
func (m *Manager) readFile(filepath string, size int) ([]byte, error) {
	f, err := m.fs.Open(filepath)
	if err != nil {
		if isNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, size)
	n, err := f.Read(buf)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, ErrInvalidRecord
	}
	return buf, nil
}

// LoadBoot loads the boot record.
func (m *Manager) LoadBoot(rec *config.BootRecord) error {
	buf, err := m.readFile(bootFile, config.BootRecordSize)
	if err != nil {
		return err
	}
	return rec.UnmarshalBinary(buf)
}

// SaveBoot saves the boot record atomically.
func (m *Manager) SaveBoot(rec *config.BootRecord) error {
	if err := m.ensureDirs(); err != nil {
		return err
	}

	rec.Version = config.CurrentVersion

	data, err := rec.MarshalBinary()
	if err != nil {
		return err
	}

	return m.atomicWrite(bootFile, data)
}

// RecordBoot bumps the boot counters for a new session and returns the
// updated record. Init retries restart at zero.
func (m *Manager) RecordBoot(family pad.Family, code uint8, presentation config.Presentation) (config.BootRecord, error) {
	var rec config.BootRecord
	if err := m.LoadBoot(&rec); err != nil && err != ErrNotFound {
		return rec, err
	}

	rec.BootCount++
	rec.Family = uint8(family)
	rec.DetectCode = code
	rec.Presentation = presentation
	rec.InitRetries = 0

	if err := m.SaveBoot(&rec); err != nil {
		return rec, err
	}

	n, err := m.FamilyBoots(family)
	if err != nil && err != ErrNotFound {
		return rec, err
	}
	return rec, m.saveFamilyBoots(family, n+1)
}

// SetInitRetries stores the failed init count of the current boot.
func (m *Manager) SetInitRetries(n int) error {
	var rec config.BootRecord
	if err := m.LoadBoot(&rec); err != nil {
		return err
	}
	rec.InitRetries = 0
	rec.AddInitRetries(n)
	return m.SaveBoot(&rec)
}

// FamilyBoots returns how many boots detected family f.
func (m *Manager) FamilyBoots(f pad.Family) (uint32, error) {
	buf, err := m.readFile(m.counterPath(f), counterSize)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (m *Manager) saveFamilyBoots(f pad.Family, n uint32) error {
	if err := m.ensureDirs(); err != nil {
		return err
	}
	buf := make([]byte, counterSize)
	binary.LittleEndian.PutUint32(buf, n)
	return m.atomicWrite(m.counterPath(f), buf)
}

// History returns the boot count of every family, indexed by pad.Family.
func (m *Manager) History() ([pad.NumFamilies]uint32, error) {
	var counts [pad.NumFamilies]uint32

	families, err := m.ListFamilies()
	if err != nil {
		return counts, err
	}
	for _, f := range families {
		n, err := m.FamilyBoots(f)
		if err != nil {
			return counts, err
		}
		counts[f] = n
	}
	return counts, nil
}

// ListFamilies returns the families that have a boot counter.
func (m *Manager) ListFamilies() ([]pad.Family, error) {
	entries, err := m.readDir(familiesDir)
	if err != nil {
		if isNotExist(err) {
			return []pad.Family{}, nil
		}
		return nil, err
	}

	var families []pad.Family
	for _, entry := range entries {
		name := entry.Name()
		// Parse "N.bin" format
		if !strings.HasSuffix(name, counterSuffix) {
			continue
		}

		numStr := strings.TrimSuffix(name, counterSuffix)
		n, err := strconv.ParseUint(numStr, 10, 8)
		if err != nil {
			continue
		}
		if f := pad.Family(n); f.Valid() {
			families = append(families, f)
		}
	}

	return families, nil
}

// GetStats returns storage statistics.
func (m *Manager) GetStats() (*Stats, error) {
	families, err := m.ListFamilies()
	if err != nil {
		return nil, err
	}

	var rec config.BootRecord
	hasBoot := m.LoadBoot(&rec) == nil

	// Estimate: each file costs its data plus ~32 bytes LittleFS
	// overhead, plus directory entries.
	used := int64(len(families)*(counterSize+32) + 100)
	if hasBoot {
		used += config.BootRecordSize + 32
	}

	total := m.blockDev.Size()

	return &Stats{
		TotalSpace:  total,
		UsedSpace:   used,
		FreeSpace:   total - used,
		HasBoot:     hasBoot,
		FamilyCount: len(families),
	}, nil
}

// counterPath returns the filesystem path of a family boot counter.
func (m *Manager) counterPath(f pad.Family) string {
	return path.Join(familiesDir, strconv.Itoa(int(f))+counterSuffix)
}

// atomicWrite writes data to a temporary file, syncs it, then renames.
// The original file is never in a partially written state.
func (m *Manager) atomicWrite(filepath string, data []byte) error {
	tempPath := filepath + tempSuffix

	// Remove temp file if it exists (from interrupted previous write)
	m.fs.Remove(tempPath)

	f, err := m.fs.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		m.fs.Remove(tempPath)
		return err
	}

	// Sync ensures data hits flash
	if syncer, ok := f.(interface{ Sync() error }); ok {
		if err := syncer.Sync(); err != nil {
			f.Close()
			m.fs.Remove(tempPath)
			return err
		}
	}

	if err := f.Close(); err != nil {
		m.fs.Remove(tempPath)
		return err
	}

	// LittleFS rename doesn't replace
	m.fs.Remove(filepath)

	if err := m.fs.Rename(tempPath, filepath); err != nil {
		m.fs.Remove(tempPath)
		return err
	}

	return nil
}

// Wipe erases the boot record and all family counters.
func (m *Manager) Wipe() error {
	return m.wipeAll()
}
