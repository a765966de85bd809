package storage

import (
	"os"
	"testing"

	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/config"
	"github.com/tuffrabit/tinygo-retropad-rp2040/pkg/pad"

	"tinygo.org/x/tinyfs"
)

func newTestStorage(t testing.TB) (*Manager, *tinyfs.MemBlockDevice) {
	// Create a memory-backed block device simulating RP2040 flash
	// 256 byte page size, 4096 byte block size, 64 blocks = 256KB
	blockDev := tinyfs.NewMemoryDevice(256, 4096, 64)

	mgr, err := New(blockDev, true)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	return mgr, blockDev
}

func TestBootSaveLoad(t *testing.T) {
	mgr, _ := newTestStorage(t)
	defer mgr.Close()

	original := config.BootRecord{
		BootCount:    41,
		Family:       uint8(pad.SNES),
		DetectCode:   0b0101,
		Presentation: config.PresentationXbox,
		InitRetries:  3,
	}

	if err := mgr.SaveBoot(&original); err != nil {
		t.Fatalf("SaveBoot failed: %v", err)
	}

	var loaded config.BootRecord
	if err := mgr.LoadBoot(&loaded); err != nil {
		t.Fatalf("LoadBoot failed: %v", err)
	}

	if loaded.Version != config.CurrentVersion {
		t.Errorf("Version not set: expected %d, got %d", config.CurrentVersion, loaded.Version)
	}
	original.Version = config.CurrentVersion
	if loaded != original {
		t.Errorf("Loaded mismatch: expected %+v, got %+v", original, loaded)
	}
}

func TestBootNotFound(t *testing.T) {
	mgr, _ := newTestStorage(t)
	defer mgr.Close()

	var rec config.BootRecord
	if err := mgr.LoadBoot(&rec); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := mgr.SetInitRetries(1); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound from SetInitRetries, got %v", err)
	}
}

func TestRecordBoot(t *testing.T) {
	mgr, _ := newTestStorage(t)
	defer mgr.Close()

	rec, err := mgr.RecordBoot(pad.GameCube, 0b0011, config.PresentationJoystick)
	if err != nil {
		t.Fatalf("RecordBoot failed: %v", err)
	}
	if rec.BootCount != 1 {
		t.Errorf("Expected first boot, got %d", rec.BootCount)
	}

	if err := mgr.SetInitRetries(12); err != nil {
		t.Fatalf("SetInitRetries failed: %v", err)
	}

	rec, err = mgr.RecordBoot(pad.N64, 0b0010, config.PresentationXbox)
	if err != nil {
		t.Fatalf("RecordBoot failed: %v", err)
	}

	var loaded config.BootRecord
	if err := mgr.LoadBoot(&loaded); err != nil {
		t.Fatalf("LoadBoot failed: %v", err)
	}
	if loaded != rec {
		t.Errorf("Stored record differs: expected %+v, got %+v", rec, loaded)
	}
	if loaded.BootCount != 2 {
		t.Errorf("Expected 2 boots, got %d", loaded.BootCount)
	}
	if loaded.Family != uint8(pad.N64) || loaded.DetectCode != 0b0010 {
		t.Errorf("Unexpected session fields: %+v", loaded)
	}
	if loaded.Presentation != config.PresentationXbox {
		t.Errorf("Expected xbox presentation, got %v", loaded.Presentation)
	}
	if loaded.InitRetries != 0 {
		t.Errorf("Init retries should restart each boot, got %d", loaded.InitRetries)
	}
}

func TestSetInitRetries(t *testing.T) {
	mgr, _ := newTestStorage(t)
	defer mgr.Close()

	if _, err := mgr.RecordBoot(pad.PS2, 0b0100, config.PresentationJoystick); err != nil {
		t.Fatalf("RecordBoot failed: %v", err)
	}

	tests := []struct {
		n    int
		want uint16
	}{
		{5, 5},
		{2, 2},
		{70000, 0xFFFF},
	}
	for _, tt := range tests {
		if err := mgr.SetInitRetries(tt.n); err != nil {
			t.Fatalf("SetInitRetries(%d) failed: %v", tt.n, err)
		}
		var rec config.BootRecord
		mgr.LoadBoot(&rec)
		if rec.InitRetries != tt.want {
			t.Errorf("SetInitRetries(%d): expected %d, got %d", tt.n, tt.want, rec.InitRetries)
		}
		if rec.BootCount != 1 {
			t.Errorf("Boot count changed: %d", rec.BootCount)
		}
	}
}

func TestFamilyHistory(t *testing.T) {
	mgr, _ := newTestStorage(t)
	defer mgr.Close()

	boots := []pad.Family{pad.NES, pad.Saturn, pad.NES, pad.Genesis, pad.NES}
	for _, f := range boots {
		if _, err := mgr.RecordBoot(f, 0, config.PresentationJoystick); err != nil {
			t.Fatalf("RecordBoot(%v) failed: %v", f, err)
		}
	}

	families, err := mgr.ListFamilies()
	if err != nil {
		t.Fatalf("ListFamilies failed: %v", err)
	}
	if len(families) != 3 {
		t.Errorf("Expected 3 families, got %d", len(families))
	}

	history, err := mgr.History()
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	want := [pad.NumFamilies]uint32{}
	want[pad.NES] = 3
	want[pad.Saturn] = 1
	want[pad.Genesis] = 1
	if history != want {
		t.Errorf("History mismatch: expected %v, got %v", want, history)
	}

	if _, err := mgr.FamilyBoots(pad.PS2); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for unused family, got %v", err)
	}
}

func TestAtomicWrite(t *testing.T) {
	mgr, _ := newTestStorage(t)
	defer mgr.Close()

	mgr.SaveBoot(&config.BootRecord{BootCount: 1})
	mgr.SaveBoot(&config.BootRecord{BootCount: 2})

	var loaded config.BootRecord
	mgr.LoadBoot(&loaded)

	if loaded.BootCount != 2 {
		t.Errorf("Expected boot count 2, got %d", loaded.BootCount)
	}
}

func TestTempFilesCleanedOnBoot(t *testing.T) {
	blockDev := tinyfs.NewMemoryDevice(256, 4096, 64)

	mgr, err := New(blockDev, true)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	if _, err := mgr.RecordBoot(pad.NES, 0b0110, config.PresentationJoystick); err != nil {
		t.Fatalf("RecordBoot failed: %v", err)
	}

	// Simulate a write interrupted before the rename
	f, err := mgr.fs.OpenFile(bootFile+tempSuffix, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	f.Write([]byte{1, 2, 3})
	f.Close()
	mgr.Close()

	mgr2, err := New(blockDev, false)
	if err != nil {
		t.Fatalf("Failed to reopen storage: %v", err)
	}
	defer mgr2.Close()

	if err := mgr2.CleanupErr(); err != nil {
		t.Errorf("Cleanup should succeed: %v", err)
	}

	entries, err := mgr2.readDir(dataDir)
	if err != nil {
		t.Fatalf("readDir failed: %v", err)
	}
	for _, e := range entries {
		if e.Name() == "boot.bin"+tempSuffix {
			t.Error("Temp file should be removed at boot")
		}
	}

	var rec config.BootRecord
	if err := mgr2.LoadBoot(&rec); err != nil {
		t.Errorf("Boot record should survive cleanup: %v", err)
	}
}

func TestVersionMismatchWipe(t *testing.T) {
	blockDev := tinyfs.NewMemoryDevice(256, 4096, 64)

	mgr, err := New(blockDev, true)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	if _, err := mgr.RecordBoot(pad.Saturn, 0b1111, config.PresentationJoystick); err != nil {
		t.Fatalf("RecordBoot failed: %v", err)
	}

	// Write a record from another firmware version, bypassing SaveBoot
	stale := config.BootRecord{Version: config.CurrentVersion + 1, BootCount: 99}
	data, _ := stale.MarshalBinary()
	if err := mgr.atomicWrite(bootFile, data); err != nil {
		t.Fatalf("atomicWrite failed: %v", err)
	}
	mgr.Close()

	mgr2, err := New(blockDev, false)
	if err != nil {
		t.Fatalf("Failed to reopen storage: %v", err)
	}
	defer mgr2.Close()

	var rec config.BootRecord
	if err := mgr2.LoadBoot(&rec); err != ErrNotFound {
		t.Errorf("Expected boot record to be wiped, got %v (%+v)", err, rec)
	}
	families, _ := mgr2.ListFamilies()
	if len(families) != 0 {
		t.Errorf("Expected family counters to be wiped, got %v", families)
	}
}

func TestVersionMatchKeepsData(t *testing.T) {
	blockDev := tinyfs.NewMemoryDevice(256, 4096, 64)

	mgr, err := New(blockDev, true)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	mgr.RecordBoot(pad.Arcade, 0xFF, config.PresentationJoystick)
	mgr.Close()

	mgr2, err := New(blockDev, false)
	if err != nil {
		t.Fatalf("Failed to reopen storage: %v", err)
	}
	defer mgr2.Close()

	rec, err := mgr2.RecordBoot(pad.Arcade, 0xFF, config.PresentationJoystick)
	if err != nil {
		t.Fatalf("RecordBoot failed: %v", err)
	}
	if rec.BootCount != 2 {
		t.Errorf("Expected boot count to survive remount, got %d", rec.BootCount)
	}
}

func TestWipe(t *testing.T) {
	mgr, _ := newTestStorage(t)
	defer mgr.Close()

	mgr.RecordBoot(pad.NES, 0, config.PresentationJoystick)
	mgr.RecordBoot(pad.SNES, 0, config.PresentationJoystick)

	if err := mgr.Wipe(); err != nil {
		t.Fatalf("Wipe failed: %v", err)
	}

	families, _ := mgr.ListFamilies()
	if len(families) != 0 {
		t.Errorf("Expected 0 families after wipe, got %d", len(families))
	}

	var rec config.BootRecord
	if err := mgr.LoadBoot(&rec); err == nil {
		t.Error("Expected boot record to be wiped")
	}
}

func TestStorageStats(t *testing.T) {
	mgr, _ := newTestStorage(t)
	defer mgr.Close()

	stats1, err := mgr.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats1.HasBoot || stats1.FamilyCount != 0 {
		t.Errorf("Expected empty storage, got %+v", stats1)
	}

	mgr.RecordBoot(pad.N64, 0b0010, config.PresentationJoystick)
	mgr.RecordBoot(pad.GameCube, 0b0011, config.PresentationJoystick)

	stats2, err := mgr.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if !stats2.HasBoot {
		t.Error("Expected boot record in stats")
	}
	if stats2.FamilyCount != 2 {
		t.Errorf("Expected 2 families, got %d", stats2.FamilyCount)
	}
	if stats2.FreeSpace >= stats2.TotalSpace || stats2.UsedSpace <= stats1.UsedSpace {
		t.Errorf("Unexpected usage: %+v", stats2)
	}
}

func BenchmarkRecordBoot(b *testing.B) {
	mgr, _ := newTestStorage(b)
	defer mgr.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mgr.RecordBoot(pad.Family(i%pad.NumFamilies), 0, config.PresentationJoystick)
	}
}

func TestCleanupFailureIsReported(t *testing.T) {
	blockDev := tinyfs.NewMemoryDevice(256, 4096, 64)

	mgr, err := New(blockDev, true)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	// A non-empty directory with the temp suffix cannot be removed
	stale := dataDir + "/stale" + tempSuffix
	if err := mgr.fs.Mkdir(stale, 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	f, err := mgr.fs.OpenFile(stale+"/keep", os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	f.Write([]byte{1})
	f.Close()
	mgr.Close()

	mgr2, err := New(blockDev, false)
	if err != nil {
		t.Fatalf("Storage should mount despite cleanup failure: %v", err)
	}
	defer mgr2.Close()

	if mgr2.CleanupErr() == nil {
		t.Error("Expected cleanup error for non-empty temp directory")
	}
	if _, err := mgr2.RecordBoot(pad.SNES, 0b0101, config.PresentationJoystick); err != nil {
		t.Errorf("RecordBoot should work after cleanup failure: %v", err)
	}
}
