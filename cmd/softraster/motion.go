package main

import (
	"github.com/charmbracelet/harmonica"
)

// axis eases one velocity component toward its target with a spring.
type axis struct {
	Velocity float64
	Target   float64
	accel    float64 // spring velocity of Velocity itself
	spring   harmonica.Spring
}

func newAxis(fps int, frequency, damping float64) axis {
	return axis{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

func (a *axis) update() {
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, a.Target)
}

// motion smooths camera movement and turning. Targets are set from input
// and decay each frame, since terminals do not reliably report key
// releases.
type motion struct {
	Forward, Right, Up axis
	Yaw, Pitch         axis

	fps                int
	frequency, damping float64
}

func newMotion(fps int, frequency, damping float64) *motion {
	m := &motion{fps: fps, frequency: frequency, damping: damping}
	m.Reset()
	return m
}

// Reset stops all movement.
func (m *motion) Reset() {
	for _, a := range m.axes() {
		*a = newAxis(m.fps, m.frequency, m.damping)
	}
}

func (m *motion) axes() [5]*axis {
	return [5]*axis{&m.Forward, &m.Right, &m.Up, &m.Yaw, &m.Pitch}
}

// Update advances every spring by one frame and decays the targets by
// decay (1 keeps them).
func (m *motion) Update(decay float64) {
	for _, a := range m.axes() {
		a.update()
		a.Target *= decay
	}
}

// Moving reports whether any axis still has noticeable velocity.
func (m *motion) Moving() bool {
	const eps = 1e-4
	for _, a := range m.axes() {
		if a.Velocity > eps || a.Velocity < -eps || a.Target != 0 {
			return true
		}
	}
	return false
}
