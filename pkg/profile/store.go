// Package profile persists named camera parameter sets as JSON files.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Dicklesworthstone/picam/pkg/model"
)

// Ext is the file extension of profile documents
const Ext = ".json"

// ErrDeclined is returned by Delete when the user answers "no"
var ErrDeclined = errors.New("deletion not confirmed")

// Confirmer asks the user a yes/no question before a destructive action
type Confirmer interface {
	Confirm(name string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(name string) (bool, error)

// Confirm implements Confirmer
func (f ConfirmFunc) Confirm(name string) (bool, error) {
	return f(name)
}

// Confirmed is a Confirmer whose answer was already collected by the caller
type Confirmed bool

// Confirm implements Confirmer
func (c Confirmed) Confirm(string) (bool, error) {
	return bool(c), nil
}

// Store reads and writes <dir>/<name>.json
type Store struct {
	dir string
}

// NewStore creates the profiles directory if needed
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("profiles directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create profiles directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the profiles directory
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file backing a profile name
func (s *Store) Path(name model.ProfileName) string {
	return filepath.Join(s.dir, name.String()+Ext)
}

// Save writes a profile, overwriting any existing file of that name.
// The reserved default profile cannot be saved through here.
func (s *Store) Save(rawName string, p model.Profile) error {
	name, err := model.ParseProfileName(rawName)
	if err != nil {
		return err
	}
	return s.write(name, p)
}

// EnsureDefault creates the default profile from params if it does not exist yet.
// It reports whether a file was written.
func (s *Store) EnsureDefault(params model.CameraParameters) (bool, error) {
	path := s.Path(model.DefaultProfile)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat default profile: %w", err)
	}
	if err := s.write(model.DefaultProfile, model.NewProfile(params)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) write(name model.ProfileName, p model.Profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", name, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(s.Path(name), data, 0644); err != nil {
		return fmt.Errorf("write profile %s: %w", name, err)
	}
	return nil
}

// Load reads a profile, including the default one
func (s *Store) Load(rawName string) (model.Profile, error) {
	name, err := model.LookupProfileName(rawName)
	if err != nil {
		return model.Profile{}, err
	}
	path := s.Path(name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Profile{}, &model.NotFoundError{Name: name.String(), Path: path}
		}
		return model.Profile{}, fmt.Errorf("read profile %s: %w", name, err)
	}

	// Missing keys keep the camera defaults rather than zero.
	p := model.NewProfile(model.DefaultParameters())
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Profile{}, &model.ParseError{Path: path, Err: err}
	}
	return p, nil
}

// LoadDefault reads the reserved default profile
func (s *Store) LoadDefault() (model.Profile, error) {
	return s.Load(model.DefaultProfileName)
}

// Delete removes a profile after the confirmer agrees.
// The default profile can never be deleted.
func (s *Store) Delete(rawName string, confirm Confirmer) error {
	name, err := model.ParseProfileName(rawName)
	if err != nil {
		return err
	}
	path := s.Path(name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &model.NotFoundError{Name: name.String(), Path: path}
		}
		return fmt.Errorf("stat profile %s: %w", name, err)
	}

	if confirm == nil {
		return ErrDeclined
	}
	ok, err := confirm.Confirm(name.String())
	if err != nil {
		return fmt.Errorf("confirm delete %s: %w", name, err)
	}
	if !ok {
		return ErrDeclined
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return &model.NotFoundError{Name: name.String(), Path: path}
		}
		return fmt.Errorf("delete profile %s: %w", name, err)
	}
	return nil
}

// Exists reports whether a profile file is present
func (s *Store) Exists(rawName string) bool {
	name, err := model.LookupProfileName(rawName)
	if err != nil {
		return false
	}
	_, err = os.Stat(s.Path(name))
	return err == nil
}

// List returns every profile name, sorted case-insensitively
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), Ext)
		// Only list what Load can open under the same name.
		name, err := model.LookupProfileName(stem)
		if err != nil || name.String() != stem {
			continue
		}
		names = append(names, stem)
	}

	SortNames(names)
	return names, nil
}

// SortNames orders names case-insensitively, breaking ties by exact bytes
func SortNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
}
