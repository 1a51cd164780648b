package physics

import (
	"testing"
)

func collide(t *testing.T, a, b *Body) (*Manifold, bool) {
	t.Helper()
	m := &Manifold{}
	ok := m.initializeWithBodies(a, b)
	return m, ok
}

func assertVec(t *testing.T, label string, got, want Vector2) {
	t.Helper()
	if !almostEqual(got.X, want.X, 1e-9) || !almostEqual(got.Y, want.Y, 1e-9) {
		t.Errorf("%s = %v, want %v", label, got, want)
	}
}

func TestBoxBox(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *Body
		want     bool
		normal   Vector2
		pen      float64
		contacts []Vector2
	}{
		{
			name: "touching edges",
			a:    MustBox(Vec(0, 0), Vec(1, 1), 1, 0),
			b:    MustBox(Vec(2, 0), Vec(1, 1), 0, 0),
			want: false,
		},
		{
			name: "separated",
			a:    MustBox(Vec(0, 0), Vec(1, 1), 1, 0),
			b:    MustBox(Vec(0, 5), Vec(1, 1), 0, 0),
			want: false,
		},
		{
			name:     "x axis",
			a:        MustBox(Vec(0, 0), Vec(1, 1), 1, 0),
			b:        MustBox(Vec(1.5, 0.5), Vec(1, 1), 0, 0),
			want:     true,
			normal:   Vec(1, 0),
			pen:      0.5,
			contacts: []Vector2{Vec(0.5, -0.5), Vec(0.5, 1)},
		},
		{
			name:     "y axis, b above",
			a:        MustBox(Vec(0, -30), Vec(20, 20), 1, 0),
			b:        MustBox(Vec(0, 0), Vec(100, 20), 0, 0),
			want:     true,
			normal:   Vec(0, 1),
			pen:      10,
			contacts: []Vector2{Vec(-20, -20), Vec(20, -20)},
		},
		{
			name:     "y axis, b below",
			a:        MustBox(Vec(0, 30), Vec(20, 20), 1, 0),
			b:        MustBox(Vec(0, 0), Vec(100, 20), 0, 0),
			want:     true,
			normal:   Vec(0, -1),
			pen:      10,
			contacts: []Vector2{Vec(-20, 20), Vec(20, 20)},
		},
		{
			name:     "equal overlap picks x",
			a:        MustBox(Vec(0, 0), Vec(1, 1), 1, 0),
			b:        MustBox(Vec(1, 1), Vec(1, 1), 0, 0),
			want:     true,
			normal:   Vec(1, 0),
			pen:      1,
			contacts: []Vector2{Vec(0, 0), Vec(0, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := collide(t, tt.a, tt.b)
			if ok != tt.want {
				t.Fatalf("collided = %v, want %v", ok, tt.want)
			}
			if !ok {
				if m.contactCount != 0 {
					t.Errorf("contactCount = %d, want 0", m.contactCount)
				}
				return
			}
			assertVec(t, "normal", m.Normal(), tt.normal)
			if !almostEqual(m.Penetration(), tt.pen, 1e-9) {
				t.Errorf("penetration = %v, want %v", m.Penetration(), tt.pen)
			}
			got := m.Contacts()
			if len(got) != len(tt.contacts) {
				t.Fatalf("contacts = %v, want %v", got, tt.contacts)
			}
			for i := range got {
				assertVec(t, "contact", got[i], tt.contacts[i])
			}
		})
	}
}

func TestCircleCircle(t *testing.T) {
	t.Run("overlapping", func(t *testing.T) {
		m, ok := collide(t, MustCircle(Vec(0, 0), 1, 1, 0), MustCircle(Vec(1.5, 0), 1, 1, 0))
		if !ok {
			t.Fatal("expected contact")
		}
		assertVec(t, "normal", m.Normal(), Vec(1, 0))
		assertVec(t, "contact", m.Contacts()[0], Vec(1, 0))
		if !almostEqual(m.Penetration(), 0.5, 1e-9) {
			t.Errorf("penetration = %v, want 0.5", m.Penetration())
		}
	})

	t.Run("touching", func(t *testing.T) {
		_, ok := collide(t, MustCircle(Vec(0, 0), 1, 1, 0), MustCircle(Vec(0, 2), 1, 1, 0))
		if ok {
			t.Error("touching circles should not collide")
		}
	})

	t.Run("coincident centres", func(t *testing.T) {
		m, ok := collide(t, MustCircle(Vec(3, 4), 2, 1, 0), MustCircle(Vec(3, 4), 2, 1, 0))
		if !ok {
			t.Fatal("expected contact")
		}
		if m.contactCount != 1 {
			t.Errorf("contactCount = %d, want 1", m.contactCount)
		}
		assertVec(t, "normal", m.Normal(), Vec(1, 0))
		assertVec(t, "contact", m.Contacts()[0], Vec(3, 4))
		if m.Penetration() != 2 {
			t.Errorf("penetration = %v, want 2", m.Penetration())
		}
	})
}

func TestCircleBox(t *testing.T) {
	box := func() *Body { return MustBox(Vec(0, 0), Vec(2, 2), 0, 0) }

	t.Run("centre outside", func(t *testing.T) {
		m, ok := collide(t, MustCircle(Vec(0, -2.5), 1, 1, 0), box())
		if !ok {
			t.Fatal("expected contact")
		}
		assertVec(t, "normal", m.Normal(), Vec(0, 1))
		assertVec(t, "contact", m.Contacts()[0], Vec(0, -2))
		if !almostEqual(m.Penetration(), 0.5, 1e-9) {
			t.Errorf("penetration = %v, want 0.5", m.Penetration())
		}
	})

	t.Run("near a corner but apart", func(t *testing.T) {
		// The AABB test passes, the exact distance does not.
		_, ok := collide(t, MustCircle(Vec(2.8, 2.8), 1, 1, 0), box())
		if ok {
			t.Error("expected no contact")
		}
	})

	t.Run("centre inside", func(t *testing.T) {
		m, ok := collide(t, MustCircle(Vec(1.5, 0), 1, 1, 0), box())
		if !ok {
			t.Fatal("expected contact")
		}
		assertVec(t, "normal", m.Normal(), Vec(-1, 0))
		assertVec(t, "contact", m.Contacts()[0], Vec(2, 0))
		if !almostEqual(m.Penetration(), 1.5, 1e-9) {
			t.Errorf("penetration = %v, want 1.5", m.Penetration())
		}
	})

	t.Run("box first negates the normal", func(t *testing.T) {
		m, ok := collide(t, box(), MustCircle(Vec(0, -2.5), 1, 1, 0))
		if !ok {
			t.Fatal("expected contact")
		}
		assertVec(t, "normal", m.Normal(), Vec(0, -1))
		if m.A().Kind() != KindBox || m.B().Kind() != KindCircle {
			t.Error("manifold operands were swapped")
		}
	})
}

func TestTestOverlap_Symmetric(t *testing.T) {
	pairs := [][2]*Body{
		{MustBox(Vec(0, 0), Vec(1, 1), 1, 0), MustBox(Vec(1.5, 0), Vec(1, 1), 1, 0)},
		{MustCircle(Vec(0, 0), 1, 1, 0), MustCircle(Vec(1, 1), 1, 1, 0)},
		{MustCircle(Vec(0, 0), 1, 1, 0), MustBox(Vec(2.5, 0), Vec(2, 2), 1, 0)},
		{MustCircle(Vec(0, 0), 1, 1, 0), MustBox(Vec(5, 0), Vec(2, 2), 1, 0)},
	}
	for _, p := range pairs {
		if TestOverlap(p[0], p[1]) != TestOverlap(p[1], p[0]) {
			t.Errorf("TestOverlap not symmetric for %v / %v", p[0].Kind(), p[1].Kind())
		}
	}
}
