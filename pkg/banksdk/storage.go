package banksdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// persistedTokenRecord is the on-disk projection of a Credential.
type persistedTokenRecord struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenExpiry  time.Time `json:"token_expiry"`
}

// tokenFile persists a credential to a single owner-only JSON file.
// All failures surface as ErrTokenStorage; callers treat them as
// non-fatal and continue without persistence.
type tokenFile struct {
	path string
	log  *slog.Logger
}

// save writes the credential atomically with 0600 permissions: the record
// is written to a temp file in the same directory and renamed over the
// target, so a concurrent load never sees a partial write.
func (f *tokenFile) save(cred Credential) error {
	record := persistedTokenRecord{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenExpiry:  cred.ExpiresAt,
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return newError(ErrTokenStorage, 0, "encoding token record", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return newError(ErrTokenStorage, 0, fmt.Sprintf("creating temp file in %s", dir), err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return newError(ErrTokenStorage, 0, "restricting token file permissions", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return newError(ErrTokenStorage, 0, "writing token record", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return newError(ErrTokenStorage, 0, "closing token file", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return newError(ErrTokenStorage, 0, "installing token file", err)
	}

	f.log.Debug("token record persisted", "path", f.path)
	return nil
}

// load reads the persisted credential. A missing file, a malformed record,
// or an expiry that is not strictly in the future all yield absent. Only
// the malformed cases additionally return an ErrTokenStorage for logging;
// the caller proceeds as if nothing were persisted either way.
func (f *tokenFile) load(now time.Time) (Credential, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Credential{}, false, nil
		}
		return Credential{}, false, newError(ErrTokenStorage, 0, "reading token file", err)
	}

	var record persistedTokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return Credential{}, false, newError(ErrTokenStorage, 0, "decoding token file", err)
	}
	if record.AccessToken == "" || record.RefreshToken == "" {
		return Credential{}, false, newError(ErrTokenStorage, 0, "token file is missing fields", nil)
	}

	// An expired record is the same as no record.
	if !record.TokenExpiry.After(now) {
		f.log.Debug("persisted token record already expired", "expiry", record.TokenExpiry)
		return Credential{}, false, nil
	}

	return Credential{
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
		ExpiresAt:    record.TokenExpiry,
	}, true, nil
}

// delete removes the persisted file. Already-absent is a no-op.
func (f *tokenFile) delete() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return newError(ErrTokenStorage, 0, "removing token file", err)
	}
	return nil
}
