package graph

// Node produces mono samples. The block starts at time now; sample i
// sits at now + float64(i)*step.
type Node interface {
	process(now, step float64, out []float64)
}

// Sink is a node that accepts incoming connections.
type Sink interface {
	Node
	addInput(n Node)
	removeInput(n Node)
}

type mixer struct {
	inputs  []Node
	scratch []float64
}

func (m *mixer) addInput(n Node) {
	m.inputs = append(m.inputs, n)
}

func (m *mixer) removeInput(n Node) {
	for i, in := range m.inputs {
		if in == n {
			m.inputs = append(m.inputs[:i], m.inputs[i+1:]...)
			return
		}
	}
}

func (m *mixer) sum(now, step float64, out []float64) {
	for i := range out {
		out[i] = 0
	}
	if len(m.scratch) < len(out) {
		m.scratch = make([]float64, len(out))
	}
	tmp := m.scratch[:len(out)]
	for _, in := range m.inputs {
		in.process(now, step, tmp)
		for i := range out {
			out[i] += tmp[i]
		}
	}
}

// Destination is the unity mixer every sounding chain connects into.
type Destination struct {
	mixer
}

func (d *Destination) process(now, step float64, out []float64) {
	d.sum(now, step, out)
}

// Gain multiplies its summed input by the automatable Gain param.
type Gain struct {
	mixer
	Gain *Param
}

func NewGain(def float64) *Gain {
	return &Gain{Gain: newParam(def)}
}

func (g *Gain) process(now, step float64, out []float64) {
	g.sum(now, step, out)
	for i := range out {
		out[i] *= g.Gain.Value(now + float64(i)*step)
	}
}
