// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package seedstore

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

func readMeta(path string) (Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, err
	}
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return Meta{}, fmt.Errorf("seedstore: unmarshal %s: %w", path, err)
	}
	return m, nil
}

// Read loads the currently visible generation for branch: the meta
// descriptor is opened first (it is the one file that must exist), and
// each columnar file is read if present — a missing file is treated as an
// empty table (§4.8 "skip files that do not exist").
func (s *Store) Read(branch string) (Generation, error) {
	meta, err := s.ReadMeta(branch)
	if err != nil {
		return Generation{}, fmt.Errorf("seedstore: read meta: %w", err)
	}

	paths := s.TablePaths(branch, meta.Generation)
	nodes, err := readParquet[Node](paths[0])
	if err != nil {
		return Generation{}, fmt.Errorf("seedstore: read nodes: %w", err)
	}
	edges, err := readParquet[Edge](paths[1])
	if err != nil {
		return Generation{}, fmt.Errorf("seedstore: read edges: %w", err)
	}
	refs, err := readParquet[ExternalRef](paths[2])
	if err != nil {
		return Generation{}, fmt.Errorf("seedstore: read external_refs: %w", err)
	}
	effects, err := readParquet[DomainEffect](paths[3])
	if err != nil {
		return Generation{}, fmt.Errorf("seedstore: read effects: %w", err)
	}

	return Generation{Nodes: nodes, Edges: edges, ExternalRefs: refs, Effects: effects, Meta: meta}, nil
}

func readParquet[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(T), parquetParallelism)
	if err != nil {
		return nil, err
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	rows := make([]T, num)
	if num > 0 {
		if err := pr.Read(&rows); err != nil {
			return nil, err
		}
	}
	return rows, nil
}
