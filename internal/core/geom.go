// Package core provides fundamental types and utilities for the engine.
// It contains no external dependencies (especially no Bubble Tea) to keep
// simulation logic pure and testable.
package core

import "math"

// Vec2 is a 2D vector in world units. Persisted and simulated fields must
// stay finite; NaN and infinity are rejected by save validation.
type Vec2 struct {
	X, Y float32
}

// Add returns the component-wise sum of two vectors.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns the component-wise difference of two vectors.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns the vector multiplied by a scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// LengthSq returns the squared length of the vector.
func (v Vec2) LengthSq() float32 {
	return v.X*v.X + v.Y*v.Y
}

// DistanceSq returns the squared distance between two points.
func DistanceSq(a, b Vec2) float32 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// IsFinite reports whether both components are finite numbers.
func (v Vec2) IsFinite() bool {
	return IsFinite(v.X) && IsFinite(v.Y)
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float32) bool {
	f64 := float64(f)
	return !math.IsNaN(f64) && !math.IsInf(f64, 0)
}

// Transform holds an entity's position and optional rotation in radians.
// HasRotation distinguishes "no rotation" from a rotation of zero so that
// saves round-trip exactly.
type Transform struct {
	Position    Vec2
	Rotation    float32
	HasRotation bool
}

// ClampF32 restricts a float32 value to be within [min, max].
func ClampF32(val, min, max float32) float32 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// StepToward advances current toward target by at most speed*dt world units.
// It returns the new position and whether the target was reached. A step
// whose remaining distance is within arrivalThreshold snaps to the target.
func StepToward(current, target Vec2, speed, dt, arrivalThreshold float32) (Vec2, bool) {
	dx := target.X - current.X
	dy := target.Y - current.Y
	distanceSq := dx*dx + dy*dy
	thresholdSq := arrivalThreshold * arrivalThreshold
	if distanceSq <= thresholdSq {
		return target, true
	}

	distance := float32(math.Sqrt(float64(distanceSq)))
	maxStep := speed * dt
	if maxStep >= distance {
		return target, true
	}

	invDistance := 1.0 / distance
	return Vec2{
		X: current.X + dx*invDistance*maxStep,
		Y: current.Y + dy*invDistance*maxStep,
	}, false
}
