/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Smart guides for interactive moves. These utilities are UI-agnostic and
// deterministic to enable unit testing and reuse across different frontends.

import "math"

// SnapOptions controls which guide candidates are considered and the threshold.
type SnapOptions struct {
	// Threshold is the maximum distance at which an alignment is reported.
	// Typical UI values are 6–8 pixels.
	Threshold     float64
	SnapToEdges   bool
	SnapToCenters bool
}

// Anchor is a static reference rect, e.g. a sibling component.
// Weight biases selection when distances tie (higher = preferred); use 1 when unsure.
type Anchor struct {
	Rect   Rect
	Weight float64
}

// GuideLine describes a visual guide for an alignment.
// Orientation is "vertical" or "horizontal"; Kind is "edge" or "center".
// Position is the x (vertical) or y (horizontal) coordinate, rounded to 3 places.
type GuideLine struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
}

type axisBest struct {
	delta, dist, score float64
	guide              GuideLine
}

// ComputeSmartGuides aligns a moving rectangle against anchors. It returns the rect
// adjusted to the closest alignment per axis and the guide lines for those alignments.
func ComputeSmartGuides(moving Rect, anchors []Anchor, opts SnapOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = 6
	}
	bx := axisBest{dist: math.Inf(1), score: math.Inf(1)}
	by := axisBest{dist: math.Inf(1), score: math.Inf(1)}

	mxL, mxR, mxT, mxB := moving.X, moving.X+moving.W, moving.Y, moving.Y+moving.H
	mxCX, mxCY := moving.X+moving.W/2, moving.Y+moving.H/2

	for _, a := range anchors {
		axL, axR, axT, axB := a.Rect.X, a.Rect.X+a.Rect.W, a.Rect.Y, a.Rect.Y+a.Rect.H
		axCX, axCY := a.Rect.X+a.Rect.W/2, a.Rect.Y+a.Rect.H/2

		if opts.SnapToEdges {
			for _, c := range [][2]float64{{mxL, axL}, {mxR, axR}, {mxL, axR}, {mxR, axL}} {
				consider(&bx, c[0]-c[1], opts.Threshold, a.Weight, guideForVertical(c[1], moving, a.Rect, "edge"))
			}
			for _, c := range [][2]float64{{mxT, axT}, {mxB, axB}, {mxT, axB}, {mxB, axT}} {
				consider(&by, c[0]-c[1], opts.Threshold, a.Weight, guideForHorizontal(c[1], moving, a.Rect, "edge"))
			}
		}
		if opts.SnapToCenters {
			consider(&bx, mxCX-axCX, opts.Threshold, a.Weight, guideForVertical(axCX, moving, a.Rect, "center"))
			consider(&by, mxCY-axCY, opts.Threshold, a.Weight, guideForHorizontal(axCY, moving, a.Rect, "center"))
		}
	}

	var guides []GuideLine
	snapped := moving
	if bx.dist <= opts.Threshold {
		snapped.X = FloatRound(moving.X-bx.delta, 3)
		guides = append(guides, bx.guide)
	}
	if by.dist <= opts.Threshold {
		snapped.Y = FloatRound(moving.Y-by.delta, 3)
		guides = append(guides, by.guide)
	}
	return snapped, guides
}

func consider(best *axisBest, delta, threshold, weight float64, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	score := dist / math.Max(1, weight)
	if score < best.score {
		best.score = score
		best.dist = dist
		best.delta = delta
		best.guide = g
	}
}

func guideForVertical(x float64, a, b Rect, kind string) GuideLine {
	minY := math.Min(a.Y, b.Y)
	maxY := math.Max(a.Y+a.H, b.Y+b.H)
	x = FloatRound(x, 3)
	return GuideLine{Orientation: "vertical", Kind: kind, Position: x, From: Pt{x, minY}, To: Pt{x, maxY}}
}

func guideForHorizontal(y float64, a, b Rect, kind string) GuideLine {
	minX := math.Min(a.X, b.X)
	maxX := math.Max(a.X+a.W, b.X+b.W)
	y = FloatRound(y, 3)
	return GuideLine{Orientation: "horizontal", Kind: kind, Position: y, From: Pt{minX, y}, To: Pt{maxX, y}}
}
