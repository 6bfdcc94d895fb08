package filesystem

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/weberc2/ecsfs/pkg/chain"
	"github.com/weberc2/ecsfs/pkg/directory"
	. "github.com/weberc2/ecsfs/pkg/types"
)

// Create adds an empty file called `name`. No data block is allocated until
// the first write.
func (v *Volume) Create(name string) error {
	m, err := v.mounted()
	if err != nil {
		return fmt.Errorf("creating file `%s`: %w", name, err)
	}
	if _, err := m.root.Create(name); err != nil {
		return err
	}
	return nil
}

// Delete removes `name` and frees its chain. A file with any open handle
// cannot be deleted.
func (v *Volume) Delete(name string) error {
	m, err := v.mounted()
	if err != nil {
		return fmt.Errorf("deleting file `%s`: %w", name, err)
	}
	if err := directory.ValidateName(name); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}

	i, found := m.root.Find(name)
	if !found {
		return fmt.Errorf("deleting file `%s`: %w", name, NotFoundErr)
	}
	if m.files.IsOpen(i) {
		return fmt.Errorf("deleting file `%s`: %w", name, FileOpenErr)
	}

	if entry := &m.root.Entries[i]; !entry.Empty() {
		freed, err := chain.Free(m.fat, entry.First)
		if err != nil {
			return fmt.Errorf("deleting file `%s`: %w", name, err)
		}
		log.WithFields(log.Fields{
			"file":   name,
			"blocks": freed,
		}).Debug("freed chain")
	}
	m.root.Clear(i)
	return nil
}

// List returns every file in directory order.
func (v *Volume) List() ([]directory.FileInfo, error) {
	m, err := v.mounted()
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return m.root.List(), nil
}
