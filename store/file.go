package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/etnz/finance"
)

// File is a ledger stored as one JSON record per line.
//
// A missing file is an empty ledger, it is created on the first append.
type File struct {
	Path     string
	Currency string

	mu sync.Mutex
}

func (f *File) Load(ctx context.Context) (*finance.Ledger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *File) load() (*finance.Ledger, error) {
	file, err := os.Open(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return finance.NewLedger(f.Currency), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open ledger: %w", err)
	}
	defer file.Close()
	ledger, err := finance.DecodeLedger(file, f.Currency)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return ledger, nil
}

func (f *File) Append(ctx context.Context, records ...finance.Record) error {
	if len(records) == 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ledger, err := f.load()
	if err != nil {
		return err
	}
	if err := validate(ledger, records); err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, rec := range records {
		if err := finance.EncodeRecord(&buf, rec); err != nil {
			return err
		}
	}
	file, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("could not open ledger for writing: %w", err)
	}
	if _, err := file.Write(buf.Bytes()); err != nil {
		file.Close()
		return fmt.Errorf("could not append to ledger: %w", err)
	}
	return file.Close()
}

// Rewrite replaces the file with the ledger in chronological order.
func (f *File) Rewrite(ctx context.Context, ledger *finance.Ledger) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var buf bytes.Buffer
	if err := finance.EncodeLedger(&buf, ledger); err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

func (f *File) Close() error { return nil }
