package fx

import (
	"math"
)

// Stage is one link of the chain. Process mutates an interleaved stereo
// buffer in place. Stages keep per-channel state, so a stage instance
// must only ever see one stream.
type Stage interface {
	Name() string
	Process(buf []float64)
	Reset()
	release()
}

type gainStage struct {
	gain float64
}

func (s *gainStage) Name() string { return "gain" }
func (s *gainStage) Reset()       {}
func (s *gainStage) release()     {}

func (s *gainStage) Process(buf []float64) {
	for i := range buf {
		buf[i] *= s.gain
	}
}

// tiltStage blends toward a one-pole lowpass (tilt < 0, darker) or adds
// the residual highs back in (tilt > 0, brighter). Zero tilt stages are
// never built, so bypass is exact by construction.
type tiltStage struct {
	tilt  float64
	alpha float64
	lp    [2]float64
}

func newTiltStage(tilt float64, sampleRate int) *tiltStage {
	const cutoffHz = 1200.0
	return &tiltStage{
		tilt:  clamp(tilt, -1, 1),
		alpha: onePoleAlpha(cutoffHz, sampleRate),
	}
}

func (s *tiltStage) Name() string { return "toneTilt" }
func (s *tiltStage) Reset()       { s.lp = [2]float64{} }
func (s *tiltStage) release()     {}

func (s *tiltStage) Process(buf []float64) {
	for i := 0; i < len(buf)-1; i += 2 {
		for ch := 0; ch < 2; ch++ {
			x := buf[i+ch]
			s.lp[ch] += s.alpha * (x - s.lp[ch])
			if s.tilt >= 0 {
				buf[i+ch] = x + s.tilt*(x-s.lp[ch])
			} else {
				buf[i+ch] = (1+s.tilt)*x - s.tilt*s.lp[ch]
			}
		}
	}
}

// modDelay is the shared kernel behind vibrato and chorus: a fractional
// delay line whose read tap is swept by a sine LFO. Phase starts at zero
// so renders are reproducible.
type modDelay struct {
	buf       [2][]float64
	writePos  int
	centerSmp float64
	depthSmp  float64
	lfoPhase  float64
	lfoStep   float64
}

func newModDelay(centerSec, depthSec, lfoHz float64, sampleRate int) *modDelay {
	size := int((centerSec + depthSec) * float64(sampleRate) * 2)
	if size < 4 {
		size = 4
	}
	return &modDelay{
		buf:       [2][]float64{make([]float64, size), make([]float64, size)},
		centerSmp: centerSec * float64(sampleRate),
		depthSmp:  depthSec * float64(sampleRate),
		lfoStep:   2 * math.Pi * lfoHz / float64(sampleRate),
	}
}

func (d *modDelay) next(ch int, x float64) float64 {
	size := len(d.buf[ch])
	d.buf[ch][d.writePos%size] = x

	delay := d.centerSmp + d.depthSmp*math.Sin(d.lfoPhase)
	pos := float64(d.writePos) - delay
	i := int(math.Floor(pos))
	frac := pos - float64(i)
	a := d.buf[ch][wrap(i, size)]
	b := d.buf[ch][wrap(i+1, size)]
	return a*(1-frac) + b*frac
}

func (d *modDelay) tick() {
	d.writePos++
	d.lfoPhase += d.lfoStep
	if d.lfoPhase > 2*math.Pi {
		d.lfoPhase -= 2 * math.Pi
	}
}

func (d *modDelay) reset() {
	for ch := range d.buf {
		for i := range d.buf[ch] {
			d.buf[ch][i] = 0
		}
	}
	d.writePos = 0
	d.lfoPhase = 0
}

func (d *modDelay) free() {
	d.buf[0] = nil
	d.buf[1] = nil
}

type vibratoStage struct {
	delay *modDelay
}

func newVibratoStage(depth float64, sampleRate int) *vibratoStage {
	return &vibratoStage{
		delay: newModDelay(0.005, 0.002*clamp(depth, 0, 1), 5.5, sampleRate),
	}
}

func (s *vibratoStage) Name() string { return "vibrato" }
func (s *vibratoStage) Reset()       { s.delay.reset() }
func (s *vibratoStage) release()     { s.delay.free() }

func (s *vibratoStage) Process(buf []float64) {
	for i := 0; i < len(buf)-1; i += 2 {
		buf[i] = s.delay.next(0, buf[i])
		buf[i+1] = s.delay.next(1, buf[i+1])
		s.delay.tick()
	}
}

type tremoloStage struct {
	depth    float64
	lfoPhase float64
	lfoStep  float64
}

func newTremoloStage(depth float64, sampleRate int) *tremoloStage {
	return &tremoloStage{
		depth:   clamp(depth, 0, 1),
		lfoStep: 2 * math.Pi * 4.5 / float64(sampleRate),
	}
}

func (s *tremoloStage) Name() string { return "tremolo" }
func (s *tremoloStage) Reset()       { s.lfoPhase = 0 }
func (s *tremoloStage) release()     {}

func (s *tremoloStage) Process(buf []float64) {
	for i := 0; i < len(buf)-1; i += 2 {
		g := 1 - s.depth*(0.5+0.5*math.Sin(s.lfoPhase))
		buf[i] *= g
		buf[i+1] *= g
		s.lfoPhase += s.lfoStep
		if s.lfoPhase > 2*math.Pi {
			s.lfoPhase -= 2 * math.Pi
		}
	}
}

type chorusStage struct {
	mix   float64
	delay *modDelay
}

func newChorusStage(mix float64, sampleRate int) *chorusStage {
	return &chorusStage{
		mix:   clamp(mix, 0, 1),
		delay: newModDelay(0.02, 0.006, 0.8, sampleRate),
	}
}

func (s *chorusStage) Name() string { return "chorus" }
func (s *chorusStage) Reset()       { s.delay.reset() }
func (s *chorusStage) release()     { s.delay.free() }

func (s *chorusStage) Process(buf []float64) {
	for i := 0; i < len(buf)-1; i += 2 {
		for ch := 0; ch < 2; ch++ {
			x := buf[i+ch]
			wet := 0.5 * (x + s.delay.next(ch, x))
			buf[i+ch] = (1-s.mix)*x + s.mix*wet
		}
		s.delay.tick()
	}
}

// phaserStage runs four swept first-order allpasses per channel.
type phaserStage struct {
	mix      float64
	state    [2][4]float64
	lfoPhase float64
	lfoStep  float64
}

func newPhaserStage(mix float64, sampleRate int) *phaserStage {
	return &phaserStage{
		mix:     clamp(mix, 0, 1),
		lfoStep: 2 * math.Pi * 0.5 / float64(sampleRate),
	}
}

func (s *phaserStage) Name() string { return "phaser" }
func (s *phaserStage) Reset() {
	s.state = [2][4]float64{}
	s.lfoPhase = 0
}
func (s *phaserStage) release() {}

func (s *phaserStage) Process(buf []float64) {
	for i := 0; i < len(buf)-1; i += 2 {
		// sweep the allpass coefficient between 0.2 and 0.8
		a := 0.5 + 0.3*math.Sin(s.lfoPhase)
		for ch := 0; ch < 2; ch++ {
			x := buf[i+ch]
			y := x
			for st := 0; st < 4; st++ {
				out := -y + s.state[ch][st]
				s.state[ch][st] = y + out*a
				y = out
			}
			buf[i+ch] = (1-s.mix)*x + s.mix*0.5*(x+y)
		}
		s.lfoPhase += s.lfoStep
		if s.lfoPhase > 2*math.Pi {
			s.lfoPhase -= 2 * math.Pi
		}
	}
}

// filterStage is an LFO-swept resonant lowpass blended in by mix.
type filterStage struct {
	mix      float64
	low      [2]float64
	band     [2]float64
	lfoPhase float64
	lfoStep  float64
	srate    float64
}

func newFilterStage(mix float64, sampleRate int) *filterStage {
	return &filterStage{
		mix:     clamp(mix, 0, 1),
		lfoStep: 2 * math.Pi * 0.3 / float64(sampleRate),
		srate:   float64(sampleRate),
	}
}

func (s *filterStage) Name() string { return "filter" }
func (s *filterStage) Reset() {
	s.low = [2]float64{}
	s.band = [2]float64{}
	s.lfoPhase = 0
}
func (s *filterStage) release() {}

func (s *filterStage) Process(buf []float64) {
	const q = 0.4
	for i := 0; i < len(buf)-1; i += 2 {
		cutoff := 500 + 1800*(0.5+0.5*math.Sin(s.lfoPhase))
		f := 2 * math.Sin(math.Pi*cutoff/s.srate)
		for ch := 0; ch < 2; ch++ {
			x := buf[i+ch]
			s.low[ch] += f * s.band[ch]
			high := x - s.low[ch] - q*s.band[ch]
			s.band[ch] += f * high
			buf[i+ch] = (1-s.mix)*x + s.mix*s.low[ch]
		}
		s.lfoPhase += s.lfoStep
		if s.lfoPhase > 2*math.Pi {
			s.lfoPhase -= 2 * math.Pi
		}
	}
}

type delayStage struct {
	mix      float64
	feedback float64
	buf      [2][]float64
	pos      int
}

func newDelayStage(mix float64, sampleRate int) *delayStage {
	size := int(0.375 * float64(sampleRate))
	return &delayStage{
		mix:      clamp(mix, 0, 1),
		feedback: 0.35,
		buf:      [2][]float64{make([]float64, size), make([]float64, size)},
	}
}

func (s *delayStage) Name() string { return "delay" }
func (s *delayStage) Reset() {
	for ch := range s.buf {
		for i := range s.buf[ch] {
			s.buf[ch][i] = 0
		}
	}
	s.pos = 0
}
func (s *delayStage) release() {
	s.buf[0] = nil
	s.buf[1] = nil
}

func (s *delayStage) Process(buf []float64) {
	size := len(s.buf[0])
	for i := 0; i < len(buf)-1; i += 2 {
		for ch := 0; ch < 2; ch++ {
			x := buf[i+ch]
			echo := s.buf[ch][s.pos]
			s.buf[ch][s.pos] = x + echo*s.feedback
			buf[i+ch] = x + s.mix*echo
		}
		s.pos = (s.pos + 1) % size
	}
}

// reverbStage is a small Schroeder reverb: four damped combs in
// parallel into two allpasses, per channel, wet blended by mix.
type reverbStage struct {
	mix    float64
	combs  [2][4]*comb
	passes [2][2]*allpass
}

var combTunings = [4]int{1557, 1617, 1491, 1422}
var allpassTunings = [2]int{225, 556}

func newReverbStage(mix float64, sampleRate int) *reverbStage {
	s := &reverbStage{mix: clamp(mix, 0, 1)}
	scale := float64(sampleRate) / 44100.0
	for ch := 0; ch < 2; ch++ {
		// detune the right channel slightly for width
		spread := ch * 23
		for i, tuning := range combTunings {
			s.combs[ch][i] = newComb(int(float64(tuning)*scale)+spread, 0.805, 0.2)
		}
		for i, tuning := range allpassTunings {
			s.passes[ch][i] = newAllpass(int(float64(tuning)*scale) + spread)
		}
	}
	return s
}

func (s *reverbStage) Name() string { return "reverb" }

func (s *reverbStage) Reset() {
	for ch := 0; ch < 2; ch++ {
		for _, c := range s.combs[ch] {
			c.reset()
		}
		for _, p := range s.passes[ch] {
			p.reset()
		}
	}
}

func (s *reverbStage) release() {
	for ch := 0; ch < 2; ch++ {
		for _, c := range s.combs[ch] {
			c.buf = nil
		}
		for _, p := range s.passes[ch] {
			p.buf = nil
		}
	}
}

func (s *reverbStage) Process(buf []float64) {
	for i := 0; i < len(buf)-1; i += 2 {
		for ch := 0; ch < 2; ch++ {
			x := buf[i+ch]
			var wet float64
			for _, c := range s.combs[ch] {
				wet += c.next(x)
			}
			wet *= 0.25
			for _, p := range s.passes[ch] {
				wet = p.next(wet)
			}
			buf[i+ch] = x + s.mix*wet
		}
	}
}

type comb struct {
	buf      []float64
	pos      int
	feedback float64
	damp     float64
	filt     float64
}

func newComb(size int, feedback, damp float64) *comb {
	if size < 1 {
		size = 1
	}
	return &comb{buf: make([]float64, size), feedback: feedback, damp: damp}
}

func (c *comb) next(x float64) float64 {
	out := c.buf[c.pos]
	c.filt = out*(1-c.damp) + c.filt*c.damp
	c.buf[c.pos] = x + c.filt*c.feedback
	c.pos = (c.pos + 1) % len(c.buf)
	return out
}

func (c *comb) reset() {
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.pos = 0
	c.filt = 0
}

type allpass struct {
	buf []float64
	pos int
}

func newAllpass(size int) *allpass {
	if size < 1 {
		size = 1
	}
	return &allpass{buf: make([]float64, size)}
}

func (a *allpass) next(x float64) float64 {
	const g = 0.5
	delayed := a.buf[a.pos]
	out := -x + delayed
	a.buf[a.pos] = x + delayed*g
	a.pos = (a.pos + 1) % len(a.buf)
	return out
}

func (a *allpass) reset() {
	for i := range a.buf {
		a.buf[i] = 0
	}
	a.pos = 0
}

type distortStage struct {
	amount float64
	drive  float64
	norm   float64
}

func newDistortStage(amount float64) *distortStage {
	amount = clamp(amount, 0, 1)
	drive := 1 + 9*amount
	return &distortStage{
		amount: amount,
		drive:  drive,
		norm:   1 / math.Tanh(drive),
	}
}

func (s *distortStage) Name() string { return "distortion" }
func (s *distortStage) Reset()       {}
func (s *distortStage) release()     {}

func (s *distortStage) Process(buf []float64) {
	for i := range buf {
		x := buf[i]
		wet := math.Tanh(x*s.drive) * s.norm
		buf[i] = (1-s.amount)*x + s.amount*wet
	}
}

// pitchStage is a delay-line pitch shifter: two read taps sweep the
// buffer at a rate offset from the write rate, crossfaded by a raised
// cosine so the splice points stay quiet.
type pitchStage struct {
	ratio    float64
	buf      [2][]float64
	writePos int
	phase    float64
	window   float64
}

func newPitchStage(semitones float64, sampleRate int) *pitchStage {
	window := 0.05 * float64(sampleRate)
	size := int(window*2) + 4
	return &pitchStage{
		ratio:  math.Pow(2, semitones/12),
		buf:    [2][]float64{make([]float64, size), make([]float64, size)},
		window: window,
	}
}

func (s *pitchStage) Name() string { return "pitchShift" }
func (s *pitchStage) Reset() {
	for ch := range s.buf {
		for i := range s.buf[ch] {
			s.buf[ch][i] = 0
		}
	}
	s.writePos = 0
	s.phase = 0
}
func (s *pitchStage) release() {
	s.buf[0] = nil
	s.buf[1] = nil
}

func (s *pitchStage) Process(buf []float64) {
	size := len(s.buf[0])
	for i := 0; i < len(buf)-1; i += 2 {
		d1 := s.phase
		d2 := math.Mod(s.phase+s.window/2, s.window)
		// triangular crossfade between the two taps
		f1 := 1 - math.Abs(2*d1/s.window-1)
		f2 := 1 - math.Abs(2*d2/s.window-1)

		for ch := 0; ch < 2; ch++ {
			s.buf[ch][s.writePos%size] = buf[i+ch]
			a := s.readTap(ch, d1, size)
			b := s.readTap(ch, d2, size)
			buf[i+ch] = a*f1 + b*f2
		}

		s.writePos++
		s.phase += 1 - s.ratio
		s.phase = math.Mod(s.phase+s.window, s.window)
	}
}

func (s *pitchStage) readTap(ch int, delay float64, size int) float64 {
	pos := float64(s.writePos) - delay
	i := int(math.Floor(pos))
	frac := pos - float64(i)
	a := s.buf[ch][wrap(i, size)]
	b := s.buf[ch][wrap(i+1, size)]
	return a*(1-frac) + b*frac
}

// limiterStage is the mandatory terminal stage: instant gain reduction
// on peaks over the ceiling, exponential recovery. Below the ceiling it
// multiplies by exactly 1, so a clean signal passes through unchanged.
type limiterStage struct {
	ceiling  float64
	gain     float64
	recovery float64
}

func newLimiterStage(sampleRate int) *limiterStage {
	return &limiterStage{
		ceiling:  0.95,
		gain:     1,
		recovery: math.Pow(0.001, 1/(0.1*float64(sampleRate))),
	}
}

func (s *limiterStage) Name() string { return "limiter" }
func (s *limiterStage) Reset()       { s.gain = 1 }
func (s *limiterStage) release()     {}

func (s *limiterStage) Process(buf []float64) {
	for i := 0; i < len(buf)-1; i += 2 {
		// recover first, then re-check against the ceiling: the recovered
		// gain must never push the current sample pair over the limit
		if s.gain < 1 {
			s.gain = math.Min(1, s.gain/s.recovery)
		}
		peak := math.Max(math.Abs(buf[i]), math.Abs(buf[i+1]))
		if peak*s.gain > s.ceiling {
			s.gain = s.ceiling / peak
		}
		buf[i] *= s.gain
		buf[i+1] *= s.gain
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func onePoleAlpha(cutoffHz float64, sampleRate int) float64 {
	return 1 - math.Exp(-2*math.Pi*cutoffHz/float64(sampleRate))
}

func wrap(i, size int) int {
	i %= size
	if i < 0 {
		i += size
	}
	return i
}
