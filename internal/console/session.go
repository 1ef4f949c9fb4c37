package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/san-kum/mandelscope/internal/fractal"
)

// Request is one evaluation asked for on the console.
type Request struct {
	A, B       float64
	Iterations int
}

// Response pairs a request with its classification and color.
type Response struct {
	Request
	Outcome fractal.Outcome
	Color   fractal.Color
}

func (r Response) String() string {
	return fmt.Sprintf("(%g, %g) with %d iterations: %s, color %s %s",
		r.A, r.B, r.Iterations, r.Outcome, r.Color, r.Color.Hex())
}

// Evaluate classifies req and colors it with eval.
func Evaluate(eval fractal.Evaluator, req Request) (Response, error) {
	out, err := eval.Classify(req.A, req.B, req.Iterations)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Request: req,
		Outcome: out,
		Color:   eval.Policy(out.Escaped, out.Iteration, req.Iterations),
	}, nil
}

// Session reads requests one field per line and answers each in turn. A field that
// does not parse is reported and asked for again.
type Session struct {
	in     *bufio.Scanner
	out    io.Writer
	eval   fractal.Evaluator
	logger bslogger.Logger

	// lines is fed by a single reader goroutine so a blocked read never holds up
	// cancellation.
	lines    chan line
	readOnce sync.Once
}

type line struct {
	text string
	err  error
}

func NewSession(r io.Reader, w io.Writer, eval fractal.Evaluator) *Session {
	return &Session{
		in:     bufio.NewScanner(r),
		out:    w,
		eval:   eval,
		logger: bslogger.NewLogger("Console", bslogger.Minimal, nil),
	}
}

func (s *Session) SetLogger(logger bslogger.Logger) {
	s.logger = logger
}

// Run answers requests until the input ends or ctx is done. End of input is not an
// error.
func (s *Session) Run(ctx context.Context) error {
	served := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			s.logger.Infof("input closed after %d requests", served)
			return nil
		}
		if err != nil {
			return err
		}

		resp, err := Evaluate(s.eval, req)
		if err != nil {
			// Next only yields positive iteration counts.
			return err
		}
		if _, err := fmt.Fprintln(s.out, resp); err != nil {
			return err
		}
		served++
	}
}

// Next reads one complete request. It returns io.EOF when the input ends, even part
// way through a request, and ctx.Err() if ctx is done while waiting for a line.
func (s *Session) Next(ctx context.Context) (Request, error) {
	var req Request
	var err error
	if req.A, err = s.float(ctx, "a"); err != nil {
		return Request{}, err
	}
	if req.B, err = s.float(ctx, "b"); err != nil {
		return Request{}, err
	}
	if req.Iterations, err = s.iterations(ctx); err != nil {
		return Request{}, err
	}
	return req, nil
}

func (s *Session) float(ctx context.Context, name string) (float64, error) {
	for {
		line, err := s.ask(ctx, name)
		if err != nil {
			return 0, err
		}
		v, err := ParseCoordinate(line)
		if err == nil {
			return v, nil
		}
		s.reject(name, err)
	}
}

func (s *Session) iterations(ctx context.Context) (int, error) {
	for {
		line, err := s.ask(ctx, "iterations")
		if err != nil {
			return 0, err
		}
		n, err := ParseIterations(line)
		if err == nil {
			return n, nil
		}
		s.reject("iterations", err)
	}
}

func (s *Session) ask(ctx context.Context, name string) (string, error) {
	if _, err := fmt.Fprintf(s.out, "%s: ", name); err != nil {
		return "", err
	}
	s.readOnce.Do(s.startReader)

	select {
	case <-ctx.Done():
		fmt.Fprintln(s.out)
		return "", ctx.Err()
	case l, ok := <-s.lines:
		if !ok || errors.Is(l.err, io.EOF) {
			fmt.Fprintln(s.out)
			return "", io.EOF
		}
		return l.text, l.err
	}
}

// startReader scans the input until it ends. The goroutine exits once the input is
// exhausted or fails; a session abandoned mid-read leaves it parked on the reader.
func (s *Session) startReader() {
	s.lines = make(chan line)
	go func() {
		defer close(s.lines)
		for s.in.Scan() {
			s.lines <- line{text: s.in.Text()}
		}
		err := s.in.Err()
		if err == nil {
			err = io.EOF
		}
		s.lines <- line{err: err}
	}()
}

func (s *Session) reject(name string, err error) {
	s.logger.Debugf("rejected %s: %v", name, err)
	fmt.Fprintf(s.out, "invalid %s: %v\n", name, err)
}

// ParseCoordinate accepts any finite real number.
func ParseCoordinate(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, errors.New("expected a number")
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not finite", text)
	}
	return v, nil
}

// ParseIterations accepts a positive integer.
func ParseIterations(text string) (int, error) {
	text = strings.TrimSpace(text)
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", text)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w, got %d", fractal.ErrInvalidIterations, n)
	}
	return n, nil
}
