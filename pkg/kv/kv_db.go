package kv

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/lintang-b-s/offlinenav/pkg/concurrent"
	"github.com/lintang-b-s/offlinenav/pkg/datastructure"
	"github.com/lintang-b-s/offlinenav/pkg/util"
	"go.uber.org/zap"
)

var (
	ErrEdgeMetadataNotFound = errors.New("edge metadata not found")
)

const (
	edgeKeyPrefix = "edge:"
	edgeCountKey  = "meta:edge_count"
	batchSize     = 1000
)

// KVDB badger side table for edge attributes (street name, road class, osm way id) keyed by edge id.
type KVDB struct {
	db      *badger.DB
	log     *zap.Logger
	workers int
}

// OpenBadger opens the badger db in dir, or an in-memory db when dir is empty.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %s: %w", dir, err)
	}
	return db, nil
}

func NewKVDB(db *badger.DB, log *zap.Logger, workers int) *KVDB {
	if workers < 1 {
		workers = 1
	}
	return &KVDB{db: db, log: log, workers: workers}
}

func (k *KVDB) Close() error {
	return k.db.Close()
}

func edgeKey(edgeID int32) []byte {
	return []byte(edgeKeyPrefix + strconv.FormatInt(int64(edgeID), 10))
}

type encodedBatch struct {
	keys   [][]byte
	values [][]byte
	err    error
}

func encodeBatch(job concurrent.EdgeMetadataBatchParam) encodedBatch {
	batch := encodedBatch{
		keys:   make([][]byte, 0, len(job.Metadata)),
		values: make([][]byte, 0, len(job.Metadata)),
	}
	for i, m := range job.Metadata {
		val, err := encodeEdgeMetadata(m)
		if err != nil {
			batch.err = fmt.Errorf("encode edge %d: %w", job.FirstEdgeID+int32(i), err)
			return batch
		}
		batch.keys = append(batch.keys, edgeKey(job.FirstEdgeID+int32(i)))
		batch.values = append(batch.values, val)
	}
	return batch
}

// SaveEdgeMetadata stores metadata[i] under edge id i. values are encoded & compressed on a worker pool
// and written with badger write batches.
func (k *KVDB) SaveEdgeMetadata(ctx context.Context, metadata []datastructure.EdgeMetadata) error {
	k.log.Info("saving edge metadata to key-value db...", zap.Int("edges", len(metadata)))

	chunks := util.ChunkG(metadata, batchSize)
	workers := concurrent.NewWorkerPool[concurrent.EdgeMetadataBatchParam, encodedBatch](k.workers, len(chunks))
	for i, chunk := range chunks {
		workers.AddJob(concurrent.NewEdgeMetadataBatchParam(int32(i*batchSize), chunk))
	}
	workers.Close()
	workers.Start(encodeBatch)
	workers.Wait()

	var saveErr error
	for batch := range workers.CollectResults() {
		if saveErr != nil {
			continue
		}
		if batch.err != nil {
			saveErr = batch.err
			continue
		}
		saveErr = k.saveBatch(ctx, batch)
	}
	if saveErr != nil {
		return saveErr
	}

	err := k.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(edgeCountKey), []byte(strconv.Itoa(len(metadata))))
	})
	if err != nil {
		return err
	}

	k.log.Info("saving edge metadata to key-value db done")
	return nil
}

func (k *KVDB) saveBatch(ctx context.Context, data encodedBatch) error {
	batch := k.db.NewWriteBatch()
	defer batch.Cancel()

	for i := range data.keys {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := batch.Set(data.keys[i], data.values[i]); err != nil {
			return err
		}
	}

	if err := batch.Flush(); err != nil {
		k.log.Error("error saving edge metadata", zap.Error(err))
		return err
	}
	return nil
}

func (k *KVDB) GetEdgeMetadata(edgeID int32) (datastructure.EdgeMetadata, error) {
	var meta datastructure.EdgeMetadata
	err := k.db.View(func(txn *badger.Txn) error {
		var err error
		meta, err = getEdgeMetadata(txn, edgeID)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return datastructure.EdgeMetadata{}, fmt.Errorf("%w: edge %d", ErrEdgeMetadataNotFound, edgeID)
	}
	return meta, err
}

// GetEdgesMetadata metadata of every edge in one read transaction. missing edges get empty metadata.
func (k *KVDB) GetEdgesMetadata(edgeIDs []int32) ([]datastructure.EdgeMetadata, error) {
	metas := make([]datastructure.EdgeMetadata, len(edgeIDs))
	err := k.db.View(func(txn *badger.Txn) error {
		for i, edgeID := range edgeIDs {
			meta, err := getEdgeMetadata(txn, edgeID)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			metas[i] = meta
		}
		return nil
	})
	return metas, err
}

func getEdgeMetadata(txn *badger.Txn, edgeID int32) (datastructure.EdgeMetadata, error) {
	item, err := txn.Get(edgeKey(edgeID))
	if err != nil {
		return datastructure.EdgeMetadata{}, err
	}

	val, err := item.ValueCopy(nil)
	if err != nil {
		return datastructure.EdgeMetadata{}, err
	}
	return decodeEdgeMetadata(val)
}

// EdgeCount number of edges written by the last SaveEdgeMetadata, 0 for an empty db.
func (k *KVDB) EdgeCount() (int, error) {
	count := 0
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(edgeCountKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			count, err = strconv.Atoi(string(val))
			return err
		})
	})
	return count, err
}
