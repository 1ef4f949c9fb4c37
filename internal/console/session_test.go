package console_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mandelscope/internal/console"
	"github.com/san-kum/mandelscope/internal/fractal"
)

var _ = Describe("Session", func() {
	var (
		out  *bytes.Buffer
		eval fractal.Evaluator
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		eval = fractal.NewEvaluator(fractal.Red, fractal.PositiveSide)
	})

	run := func(input string) error {
		return console.NewSession(strings.NewReader(input), out, eval).Run(context.Background())
	}

	It("answers a request and stops at end of input", func() {
		Expect(run("-1\n-1\n5\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("a: b: iterations: "))
		Expect(out.String()).To(ContainSubstring("escaped at iteration 3, color rgb(153, 0, 0) #990000"))
	})

	It("answers every request in order", func() {
		Expect(run("0\n0\n10\n3\n0\n10\n")).To(Succeed())
		lines := strings.Split(out.String(), "\n")
		var answers []string
		for _, l := range lines {
			if strings.Contains(l, "iterations:") && strings.Contains(l, "color") {
				answers = append(answers, l)
			}
		}
		Expect(answers).To(HaveLen(2))
		Expect(answers[0]).To(ContainSubstring("bounded, color rgb(0, 0, 0)"))
		Expect(answers[1]).To(ContainSubstring("escaped at iteration 0"))
	})

	It("re-prompts a coordinate that is not a number", func() {
		Expect(run("abc\n-1\n-1\n5\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring(`invalid a: "abc" is not a number`))
		Expect(strings.Count(out.String(), "a: ")).To(BeNumerically(">=", 2))
		Expect(out.String()).To(ContainSubstring("escaped at iteration 3"))
	})

	DescribeTable("re-prompts an invalid iteration count",
		func(bad string) {
			Expect(run("-1\n-1\n" + bad + "\n5\n")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("invalid iterations"))
			Expect(strings.Count(out.String(), "invalid iterations")).To(Equal(1))
			Expect(out.String()).To(ContainSubstring("escaped at iteration 3"))
		},
		Entry("zero", "0"),
		Entry("negative", "-4"),
		Entry("fractional", "2.5"),
		Entry("text", "many"),
	)

	It("does not re-ask fields that were already accepted", func() {
		Expect(run("1\nx\n1\n5\n")).To(Succeed())
		Expect(strings.Count(out.String(), "a: ")).To(Equal(2))
		Expect(out.String()).To(ContainSubstring("invalid b"))
	})

	It("ends quietly when input stops mid-request", func() {
		Expect(run("0.25\n")).To(Succeed())
		Expect(out.String()).NotTo(ContainSubstring("color"))
	})

	It("uses the configured policy", func() {
		eval = fractal.NewEvaluator(fractal.Inverse, fractal.PositiveSide)
		Expect(run("0\n0\n5\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("bounded, color rgb(255, 255, 255) #ffffff"))
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := console.NewSession(strings.NewReader("0\n0\n5\n"), out, eval)
		Expect(s.Run(ctx)).To(MatchError(context.Canceled))
	})

	It("returns io.EOF from Next on empty input", func() {
		s := console.NewSession(strings.NewReader(""), out, eval)
		_, err := s.Next(context.Background())
		Expect(errors.Is(err, io.EOF)).To(BeTrue())
	})

	It("stops waiting for input when the context is canceled", func() {
		pr, pw := io.Pipe()
		DeferCleanup(pw.Close)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- console.NewSession(pr, out, eval).Run(ctx)
		}()

		Consistently(done, "50ms").ShouldNot(Receive())
		cancel()
		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})

	It("keeps answering after a line arrives late", func() {
		pr, pw := io.Pipe()
		DeferCleanup(pw.Close)

		s := console.NewSession(pr, io.Discard, eval)
		go func() {
			defer GinkgoRecover()
			_, err := io.WriteString(pw, "-1\n-1\n5\n")
			Expect(err).NotTo(HaveOccurred())
		}()
		req, err := s.Next(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(req).To(Equal(console.Request{A: -1, B: -1, Iterations: 5}))
	})
})

var _ = Describe("parsing", func() {
	It("accepts finite coordinates with surrounding space", func() {
		v, err := console.ParseCoordinate("  -1.5 ")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(-1.5))
	})

	It("rejects non-finite coordinates", func() {
		for _, s := range []string{"NaN", "inf", "-Inf", "1e400", ""} {
			_, err := console.ParseCoordinate(s)
			Expect(err).To(HaveOccurred(), s)
		}
	})

	It("ties non-positive iteration counts to ErrInvalidIterations", func() {
		_, err := console.ParseIterations("0")
		Expect(err).To(MatchError(fractal.ErrInvalidIterations))

		n, err := console.ParseIterations(" 1 ")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))
	})
})

var _ = Describe("Evaluate", func() {
	It("reports the outcome and the color together", func() {
		resp, err := console.Evaluate(fractal.NewEvaluator(fractal.Viewer, fractal.PositiveSide),
			console.Request{A: -1, B: -1, Iterations: 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Outcome).To(Equal(fractal.Outcome{Escaped: true, Iteration: 3}))
		Expect(resp.Color).To(Equal(fractal.Color{R: 204}))
	})

	It("rejects a zero iteration budget", func() {
		_, err := console.Evaluate(fractal.NewEvaluator(nil, fractal.PositiveSide), console.Request{Iterations: 0})
		Expect(err).To(MatchError(fractal.ErrInvalidIterations))
	})
})
