// Package backup writes and reads msgpack snapshots of the stored data.
package backup

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"restock/internal/model"
)

// FormatVersion is bumped when Snapshot changes incompatibly.
const FormatVersion = 1

const (
	filePrefix = "restock-"
	fileExt    = ".msgpack"
	timeLayout = "20060102-150405"
)

// Snapshot is everything a backup holds.
type Snapshot struct {
	Version    int               `json:"version"`
	CreatedAt  time.Time         `json:"createdAt"`
	Products   []*model.Product  `json:"products"`
	Categories []*model.Category `json:"categories"`
	Weeks      []*model.WeekData `json:"weeks"`
	Orders     []*model.Order    `json:"orders"`
}

// Source lists the data to back up. *store.Store implements it.
type Source interface {
	ListProducts(includeHidden bool) ([]*model.Product, error)
	ListCategories() ([]*model.Category, error)
	ListWeeks() ([]*model.WeekData, error)
	ListAllOrders() ([]*model.Order, error)
}

// Take reads a snapshot from src.
func Take(src Source, now time.Time) (*Snapshot, error) {
	products, err := src.ListProducts(true)
	if err != nil {
		return nil, err
	}
	categories, err := src.ListCategories()
	if err != nil {
		return nil, err
	}
	weeks, err := src.ListWeeks()
	if err != nil {
		return nil, err
	}
	orders, err := src.ListAllOrders()
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Version:    FormatVersion,
		CreatedAt:  now.UTC(),
		Products:   products,
		Categories: categories,
		Weeks:      weeks,
		Orders:     orders,
	}, nil
}

// Encode serialises snapshot. Field names follow the json tags so a backup
// reads the same as the API.
func Encode(snapshot *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(snapshot); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Write takes a snapshot of src and stores it under dir. It returns the
// file path.
func Write(src Source, dir string, now time.Time) (string, error) {
	snapshot, err := Take(src, now)
	if err != nil {
		return "", fmt.Errorf("failed to read data: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	data, err := Encode(snapshot)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, filePrefix+now.UTC().Format(timeLayout)+fileExt)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to finalise backup: %w", err)
	}
	return path, nil
}

// Load reads a snapshot written by Write.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup: %w", err)
	}
	defer f.Close()

	dec := msgpack.NewDecoder(bufio.NewReader(f))
	dec.SetCustomStructTag("json")

	var snapshot Snapshot
	if err := dec.Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if snapshot.Version > FormatVersion {
		return nil, fmt.Errorf("backup format %d is newer than supported %d", snapshot.Version, FormatVersion)
	}
	return &snapshot, nil
}

// List returns the backups in dir, newest first.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}
