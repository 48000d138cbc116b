package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"masterdata-importer/core/storage"
	"masterdata-importer/feature/masterdata/models"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// ErrMissingTable means a required dump table is absent.
var ErrMissingTable = errors.New("missing dump table")

// Source supplies the flat tables of one dump.
type Source interface {
	Load(ctx context.Context) (*models.Dump, error)
}

// StorageSource reads one object per table, <prefix>/<table>.json.
type StorageSource struct {
	client  storage.Client
	bucket  string
	prefix  string
	workers int
}

// NewStorageSource creates a source over a bucket prefix such as masterdata/jp.
func NewStorageSource(client storage.Client, bucket, prefix string, workers int) *StorageSource {
	if workers < 1 {
		workers = 1
	}
	return &StorageSource{
		client:  client,
		bucket:  bucket,
		prefix:  strings.TrimSuffix(prefix, "/"),
		workers: workers,
	}
}

func (s *StorageSource) objectName(table string) string {
	return path.Join(s.prefix, table+".json")
}

// Load lists the prefix once, fails if a required table is absent, then
// fetches the present tables concurrently.
func (s *StorageSource) Load(ctx context.Context) (*models.Dump, error) {
	keys, err := storage.ListKeys(ctx, s.client, s.bucket, s.prefix+"/")
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, table := range models.RequiredTables {
		if _, ok := keys[s.objectName(table)]; !ok {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s under %s", ErrMissingTable, strings.Join(missing, ", "), s.prefix)
	}

	tables := append([]string{}, models.RequiredTables...)
	for _, table := range models.OptionalTables {
		if _, ok := keys[s.objectName(table)]; ok {
			tables = append(tables, table)
		}
	}

	dump := &models.Dump{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	// Each table decodes into its own Dump field
	for _, table := range tables {
		g.Go(func() error {
			data, err := storage.ReadObject(gctx, s.client, s.bucket, s.objectName(table))
			if err != nil {
				return err
			}
			return dump.DecodeTable(table, data)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return dump, nil
}

// BundleSource reads every table from a single JSON object keyed by table name.
type BundleSource struct {
	client storage.Client
	bucket string
	object string
}

// NewBundleSource creates a source over one bundle object.
func NewBundleSource(client storage.Client, bucket, object string) *BundleSource {
	return &BundleSource{client: client, bucket: bucket, object: object}
}

// Load downloads the bundle and splits it into tables.
func (s *BundleSource) Load(ctx context.Context) (*models.Dump, error) {
	data, err := storage.ReadObject(ctx, s.client, s.bucket, s.object)
	if err != nil {
		return nil, err
	}
	return DecodeBundle(data)
}

// DecodeBundle splits a combined {"mstSvt": [...], ...} payload into a Dump.
func DecodeBundle(data []byte) (*models.Dump, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("bundle is not valid JSON")
	}

	dump := &models.Dump{}
	decode := func(table string, required bool) error {
		res := gjson.GetBytes(data, table)
		if !res.Exists() {
			if required {
				return fmt.Errorf("%w: %s", ErrMissingTable, table)
			}
			return nil
		}
		return dump.DecodeTable(table, []byte(res.Raw))
	}

	for _, table := range models.RequiredTables {
		if err := decode(table, true); err != nil {
			return nil, err
		}
	}
	for _, table := range models.OptionalTables {
		if err := decode(table, false); err != nil {
			return nil, err
		}
	}
	return dump, nil
}

// DirSource reads <dir>/<table>.json from the local filesystem.
type DirSource struct {
	dir string
}

// NewDirSource creates a source over a local directory.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Load reads every table file.
func (s *DirSource) Load(ctx context.Context) (*models.Dump, error) {
	dump := &models.Dump{}
	read := func(table string, required bool) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := os.ReadFile(filepath.Join(s.dir, table+".json"))
		if errors.Is(err, os.ErrNotExist) {
			if required {
				return fmt.Errorf("%w: %s in %s", ErrMissingTable, table, s.dir)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", table, err)
		}
		return dump.DecodeTable(table, data)
	}

	for _, table := range models.RequiredTables {
		if err := read(table, true); err != nil {
			return nil, err
		}
	}
	for _, table := range models.OptionalTables {
		if err := read(table, false); err != nil {
			return nil, err
		}
	}
	return dump, nil
}

// LoadEntities reads a pre-assembled entity set from storage. Entities from
// this path bypass the assembler.
func LoadEntities(ctx context.Context, client storage.Client, bucket, object string) (*models.EntitySet, error) {
	data, err := storage.ReadObject(ctx, client, bucket, object)
	if err != nil {
		return nil, err
	}
	return DecodeEntities(data)
}

// DecodeEntities decodes an entity set payload.
func DecodeEntities(data []byte) (*models.EntitySet, error) {
	var set models.EntitySet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to decode entity set: %w", err)
	}
	return &set, nil
}
