package storage

import (
	"encoding/binary"

	"github.com/dgraph-io/badger/v2"
)

func TestBadgerDB() *badger.DB {
	option := badger.DefaultOptions("").WithInMemory(true)
	db, err := badger.Open(option)
	if err != nil {
		panic(err)
	}
	return db
}

type BadgerBackend struct {
	db *badger.DB
}

func NewBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

func (backend *BadgerBackend) Close() error {
	return backend.db.Close()
}

func (backend *BadgerBackend) txnGet(key []byte) ([]byte, error) {
	var sampleBytes []byte
	err := backend.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		sampleBytes, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	return sampleBytes, err
}

func (backend *BadgerBackend) txnPut(key, buf []byte) error {
	err := backend.db.Update(func(txn *badger.Txn) error {
		err := txn.Set(key, buf)
		return err
	})
	return err
}

func (backend *BadgerBackend) txnDelete(key []byte) error {
	err := backend.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(key)
		return err
	})
	return err
}

func (backend *BadgerBackend) GetSample(seriesID, index int64) ([]byte, error) {
	key := GetSampleKey(seriesID, index)
	return backend.txnGet(key)
}

func (backend *BadgerBackend) PutSample(seriesID, index int64, buf []byte) error {
	key := GetSampleKey(seriesID, index)
	return backend.txnPut(key, buf)
}

func (backend *BadgerBackend) DeleteSample(seriesID, index int64) error {
	key := GetSampleKey(seriesID, index)
	return backend.txnDelete(key)
}

func (backend *BadgerBackend) GetSeriesLength(seriesID int64) (int64, error) {
	key := GetMetaKey(seriesID, lengthOffset)
	buf, err := backend.txnGet(key)
	if err == ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf)), nil
}

func (backend *BadgerBackend) PutSeriesLength(seriesID, length int64) error {
	key := GetMetaKey(seriesID, lengthOffset)
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(length))
	return backend.txnPut(key, buf)
}

func GetSampleKeyPrefix(seriesID int64) []byte {
	buf := make([]byte, 9)
	binary.LittleEndian.PutUint64(buf[:8], uint64(seriesID))
	buf[8] = kindSample
	return buf
}

func (backend *BadgerBackend) IterateSamples(seriesID int64, lambda func(int64) error) error {
	prefix := GetSampleKeyPrefix(seriesID)
	iterOpts := badger.IteratorOptions{Prefix: prefix}
	err := backend.db.View(func(txn *badger.Txn) error {
		iter := txn.NewIterator(iterOpts)
		defer iter.Close()

		for iter.Seek(nil); iter.Valid(); iter.Next() {
			item := iter.Item()
			if err := lambda(GetIndexFromKey(item.Key())); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}
