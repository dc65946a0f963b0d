package main

import (
	"math"
	"testing"
)

func TestMotionApproachesTarget(t *testing.T) {
	m := newMotion(60, 6, 1)
	m.Forward.Target = 1
	for range 120 {
		m.Update(1)
	}
	if math.Abs(m.Forward.Velocity-1) > 0.01 {
		t.Errorf("velocity = %v after two seconds, want about 1", m.Forward.Velocity)
	}
	if m.Right.Velocity != 0 {
		t.Errorf("untouched axis moved: %v", m.Right.Velocity)
	}
}

func TestMotionDecay(t *testing.T) {
	m := newMotion(60, 6, 1)
	m.Yaw.Target = 1
	m.Update(0.5)
	if m.Yaw.Target != 0.5 {
		t.Errorf("target = %v, want 0.5", m.Yaw.Target)
	}
	if !m.Moving() {
		t.Error("motion with a target should be moving")
	}
	m.Reset()
	if m.Moving() {
		t.Error("reset motion should be still")
	}
}
