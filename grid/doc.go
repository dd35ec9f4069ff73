// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package grid implements an indexed uniform spatial hash grid over 3-D
// point clouds. It buckets a fixed point set into cubic cells at
// construction time (Build), then answers fixed-radius range queries
// (QueryRadius) and k-nearest-neighbor queries (QueryKNN) against that
// index, plus batched drivers (BatchQueryRadius, BatchQueryKNN) that fan a
// query workload out across goroutines.
//
// The index is built once and is read-only for the rest of its lifetime;
// there is no insertion or deletion after Build, and no two queries ever
// write to each other's output slots, so any number of goroutines may query
// the same Index concurrently without locking.
//
// See internal/binmap for the sparse cell-key map the index is built on.
package grid
