// Package pkg holds the libraries behind augment, a bounding-box aware image
// augmentation engine.
//
// # Overview
//
// Each geometric augmentation of an image moves the objects on it. augment
// applies crops, rotations, scales, shears and translations to images and
// carries an axis-aligned bounding box through every step, so labelled
// training data stays labelled after augmentation. The pkg directory is
// organized into these areas:
//
//  1. [geom] - Points, boxes, extents and affine maps
//  2. [boxtf] - Per-operation box transforms (no pixels involved)
//  3. [augment] - Ops, recipes and chains that pair box transforms with rendering
//  4. [raster] - Image decoding, encoding and resampling
//  5. [pipeline] - Orchestration (decode → transform → encode) with caching
//  6. [cache], [store] - Artifact caching and augmentation records
//  7. [errors], [observability], [buildinfo] - Shared plumbing
//
// # Architecture
//
// The typical data flow through augment:
//
//	Image + optional box + recipe
//	         ↓
//	    [raster] package (decode)
//	         ↓
//	    [augment] package (plan each op with [boxtf], render with [raster])
//	         ↓
//	    [raster] package (encode)
//	         ↓
//	    PNG/JPEG/GIF/TIFF/BMP output + box trace
//
// # Quick Start
//
// Follow a box through a chain of operations without touching pixels:
//
//	import (
//	    "github.com/matzehuels/augment/pkg/augment"
//	    "github.com/matzehuels/augment/pkg/geom"
//	)
//
//	trace, err := augment.Chain(geom.Extent{W: 400, H: 300},
//	    geom.Some(geom.NewBox(100, 100, 200, 200)),
//	    augment.Crop{X1: 50, Y1: 50, X2: 350, Y2: 250},
//	    augment.Rotate{Angle: 15, KeepResolution: true},
//	)
//	box, _ := trace.Box().Get() // box.IsSentinel() once it left the image
//
// Run a recipe file against an image on disk with caching:
//
//	recipe, _ := augment.LoadRecipe("tilt.toml")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Input:  "cat.png",
//	    Output: "cat-aug.png",
//	    Recipe: recipe,
//	    Box:    geom.Some(geom.NewBox(10, 20, 110, 140)),
//	})
//
// # Lost Boxes
//
// A box that leaves the image entirely becomes the sentinel (0, 0, 0, 0),
// reported by [geom.Box.IsSentinel]. Every later step keeps it lost. An image
// without any box uses [geom.None], which serializes as null.
package pkg
