package physics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigid2d/internal/physics"
)

const frameDt = 0.016

func advance(w *physics.World, frames int) {
	for i := 0; i < frames; i++ {
		w.Update(frameDt)
	}
}

var _ = Describe("World", func() {
	var (
		world  *physics.World
		ground *physics.Body
	)

	BeforeEach(func() {
		world = physics.NewWorld(physics.Vec(0, 100), 10, 10)
		ground = physics.MustBox(physics.Vec(0, 0), physics.Vec(200, 20), 0, 0)
		Expect(world.AddBody(ground)).To(BeTrue())
	})

	Describe("a box dropped onto the ground", func() {
		var box *physics.Body

		BeforeEach(func() {
			box = physics.MustBox(physics.Vec(0, -30), physics.Vec(20, 20), 1, 0)
			Expect(world.AddBody(box)).To(BeTrue())
			advance(world, 100)
		})

		It("settles on the top surface", func() {
			Expect(box.Position.Y).To(BeNumerically("~", -40, 0.1))
			Expect(box.Position.X).To(BeNumerically("~", 0, 1e-9))
		})

		It("keeps a single two-point contact", func() {
			Expect(world.ContactCount()).To(Equal(1))
			m := world.Contacts()[0]
			Expect(m.A()).To(BeIdenticalTo(box))
			Expect(m.B()).To(BeIdenticalTo(ground))
			Expect(m.Contacts()).To(HaveLen(2))
			Expect(m.Penetration()).To(BeNumerically("<=", physics.Slop+1e-3))
		})

		It("leaves the ground untouched", func() {
			Expect(ground.Position).To(Equal(physics.Vec(0, 0)))
			Expect(ground.Velocity).To(Equal(physics.Vector2{}))
		})

		It("updates the pixel position", func() {
			Expect(box.PixelPosition).To(Equal(box.Position.Round()))
		})
	})

	Describe("a bouncing ball", func() {
		It("reverses its vertical velocity on impact", func() {
			ball := physics.MustCircle(physics.Vec(0, -100), 10, 1, 0)
			ball.Restitution = 0.8
			ground.Restitution = 0.8
			world.AddBody(ball)

			fell, bounced := false, false
			for i := 0; i < 150 && !bounced; i++ {
				world.Update(frameDt)
				if ball.Velocity.Y > 10 {
					fell = true
				}
				if fell && ball.Velocity.Y < -10 {
					bounced = true
				}
			}
			Expect(bounced).To(BeTrue())
			Expect(ball.Position.Y).To(BeNumerically("<", -20))
		})

		It("comes to rest without restitution", func() {
			ball := physics.MustCircle(physics.Vec(0, -100), 10, 1, 0)
			world.AddBody(ball)
			advance(world, 200)
			Expect(ball.Position.Y).To(BeNumerically("~", -30, 0.1))
		})
	})

	Describe("a stack of boxes", func() {
		It("stays ordered and above the ground", func() {
			var stack []*physics.Body
			for i := 0; i < 3; i++ {
				b := physics.MustBox(physics.Vec(0, -41-float64(i)*41), physics.Vec(20, 20), 1, 0)
				world.AddBody(b)
				stack = append(stack, b)
			}
			advance(world, 200)

			for i, b := range stack {
				Expect(b.CheckFinite()).To(Succeed())
				Expect(b.Position.Y + 20).To(BeNumerically("<=", -20+physics.Slop+0.5), "box %d", i)
				if i > 0 {
					Expect(b.Position.Y).To(BeNumerically("<", stack[i-1].Position.Y))
				}
			}
		})
	})

	Describe("removing a body", func() {
		It("stops simulating it", func() {
			ball := physics.MustCircle(physics.Vec(0, -100), 10, 1, 0)
			world.AddBody(ball)
			advance(world, 5)
			Expect(world.RemoveBody(ball)).To(BeTrue())

			pos := ball.Position
			advance(world, 5)
			Expect(ball.Position).To(Equal(pos))
			Expect(world.Dynamics()).To(BeEmpty())
		})
	})

	Describe("shared id generators", func() {
		It("hands out distinct ids across worlds", func() {
			gen := physics.NewIDGenerator()
			other := physics.NewWorld(physics.DefaultGravity, 1, 1)
			world.SetIDGenerator(gen)
			other.SetIDGenerator(gen)

			a := physics.MustCircle(physics.Vec(0, 0), 1, 1, 0)
			b := physics.MustCircle(physics.Vec(0, 0), 1, 1, 0)
			world.AddBody(a)
			other.AddBody(b)
			Expect(a.ID).NotTo(Equal(b.ID))
		})
	})
})
