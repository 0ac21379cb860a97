// Copyright 2024 The scsarchive Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package scsarchive reads the archive container formats shipped with a
// truck-simulation title's game data: a versioned custom container (V1 and
// V2) and plain ZIP. Files inside any container are addressed by a 64-bit
// CityHash of their virtual path. The package exposes a uniform Archive
// interface over all three container kinds plus a combined, overlay view
// that lets mod archives shadow base-game ones.
package scsarchive
