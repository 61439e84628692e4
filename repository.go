package ledger

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Repository persists the durable state of a ledger: the instrument catalog
// and the transaction log.
type Repository interface {
	// Load returns the catalog and the transactions. A missing ledger is
	// reported with an error wrapping fs.ErrNotExist.
	Load(ctx context.Context) (Catalog, []Transaction, error)
	// Save replaces the persisted state. On failure, the previously persisted
	// state is left intact.
	Save(ctx context.Context, instruments Catalog, transactions []Transaction) error
}

// JSONLFile is a Repository storing the ledger in a single JSONL file.
type JSONLFile struct {
	Path string
}

func (f JSONLFile) Load(ctx context.Context) (Catalog, []Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	r, err := os.Open(f.Path)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	instruments, transactions, err := DecodeLedger(r)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot decode ledger %q: %w", f.Path, err)
	}
	return instruments, transactions, nil
}

// Save writes the ledger to a temporary file in the same directory, then
// renames it over the ledger file.
func (f JSONLFile) Save(ctx context.Context, instruments Catalog, transactions []Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteFileAtomic(f.Path, func(w io.Writer) error {
		if err := EncodeLedger(w, instruments, transactions); err != nil {
			return fmt.Errorf("cannot encode ledger: %w", err)
		}
		return nil
	})
}

// WriteFileAtomic replaces the file at path with what write produces. The
// content goes to a temporary file in the same directory first, so path is
// either left untouched or fully replaced.
func WriteFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := writeTemp(path, write)
	if err != nil {
		return err
	}
	return replace(tmp, path)
}

// writeTemp writes a temporary file next to path and returns its name.
func writeTemp(path string, write func(io.Writer) error) (name string, err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, base+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("cannot create %q: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err := write(w); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("cannot write %q: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("cannot write %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("cannot write %q: %w", path, err)
	}
	return tmp.Name(), nil
}

// replace renames tmp over path, removing tmp on failure.
func replace(tmp, path string) error {
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cannot replace %q: %w", path, err)
	}
	return nil
}
