package pose

import (
	"fmt"
	"strings"
)

// AngleKind selects how an AngleDefinition picks its two segments.
type AngleKind int

const (
	// KindJoint measures the angle at Vertex between Vertex->A and Vertex->C.
	KindJoint AngleKind = iota
	// KindPlumbLine measures the From->To segment against the plumb line.
	KindPlumbLine
)

// AngleDefinition names one angle a frame derives from its landmarks.
type AngleDefinition struct {
	Name   string
	Kind   AngleKind
	A      Joint
	Vertex Joint
	C      Joint
	From   Joint
	To     Joint
}

// JointAngle defines the angle at vertex formed by the segments towards a and c.
func JointAngle(name string, a, vertex, c Joint) AngleDefinition {
	return AngleDefinition{Name: name, Kind: KindJoint, A: a, Vertex: vertex, C: c}
}

// PlumbLineAngle defines the angle between the from->to segment and the
// shoulder-to-hip reference axis.
func PlumbLineAngle(name string, from, to Joint) AngleDefinition {
	return AngleDefinition{Name: name, Kind: KindPlumbLine, From: from, To: to}
}

func (d AngleDefinition) String() string {
	if d.Kind == KindPlumbLine {
		return fmt.Sprintf("%s(%s->%s | plumb line)", d.Name, d.From, d.To)
	}
	return fmt.Sprintf("%s(%s<-%s->%s)", d.Name, d.A, d.Vertex, d.C)
}

// Validate checks that the definition is named and references distinct,
// known joints.
func (d AngleDefinition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("angle definition has no name")
	}
	var joints []Joint
	switch d.Kind {
	case KindJoint:
		joints = []Joint{d.A, d.Vertex, d.C}
	case KindPlumbLine:
		joints = []Joint{d.From, d.To}
	default:
		return fmt.Errorf("angle %s: unknown kind %d", d.Name, d.Kind)
	}
	seen := make(map[Joint]bool, len(joints))
	for _, j := range joints {
		if !j.Valid() {
			return fmt.Errorf("angle %s: joint %d is not in the vocabulary", d.Name, int(j))
		}
		// A repeated joint makes a zero-length segment or a constant angle.
		if seen[j] {
			return fmt.Errorf("angle %s: joint %s is used more than once", d.Name, j)
		}
		seen[j] = true
	}
	return nil
}

// ParseAngleDefinition reads "name=a,vertex,c" as a joint angle and
// "name=from,to" as a segment measured against the plumb line. Joint names
// may use legacy spellings.
func ParseAngleDefinition(s string) (AngleDefinition, error) {
	name, list, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return AngleDefinition{}, fmt.Errorf("angle %q: expected name=joint,joint[,joint]", s)
	}

	parts := strings.Split(list, ",")
	joints := make([]Joint, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		j, ok := ParseJoint(p)
		if !ok {
			return AngleDefinition{}, fmt.Errorf("angle %s: unknown joint %q", name, p)
		}
		joints = append(joints, j)
	}

	var d AngleDefinition
	switch len(joints) {
	case 2:
		d = PlumbLineAngle(name, joints[0], joints[1])
	case 3:
		d = JointAngle(name, joints[0], joints[1], joints[2])
	default:
		return AngleDefinition{}, fmt.Errorf("angle %s: expected 2 or 3 joints, got %d", name, len(joints))
	}
	if err := d.Validate(); err != nil {
		return AngleDefinition{}, err
	}
	return d, nil
}

// DefaultAngleDefinitions is the angle set used when no other is configured.
func DefaultAngleDefinitions() []AngleDefinition {
	return []AngleDefinition{
		JointAngle("left_elbow", LeftShoulder, LeftElbow, LeftWrist),
		JointAngle("right_elbow", RightShoulder, RightElbow, RightWrist),
		JointAngle("left_shoulder", LeftElbow, LeftShoulder, LeftHip),
		JointAngle("right_shoulder", RightElbow, RightShoulder, RightHip),
		JointAngle("left_hip", LeftShoulder, LeftHip, LeftKnee),
		JointAngle("right_hip", RightShoulder, RightHip, RightKnee),
		JointAngle("left_knee", LeftHip, LeftKnee, LeftAnkle),
		JointAngle("right_knee", RightHip, RightKnee, RightAnkle),
		PlumbLineAngle("left_upper_arm_plumb", LeftShoulder, LeftElbow),
		PlumbLineAngle("right_upper_arm_plumb", RightShoulder, RightElbow),
		PlumbLineAngle("left_forearm_plumb", LeftElbow, LeftWrist),
		PlumbLineAngle("right_forearm_plumb", RightElbow, RightWrist),
		PlumbLineAngle("left_thigh_plumb", LeftHip, LeftKnee),
		PlumbLineAngle("right_thigh_plumb", RightHip, RightKnee),
		PlumbLineAngle("left_shin_plumb", LeftKnee, LeftAnkle),
		PlumbLineAngle("right_shin_plumb", RightKnee, RightAnkle),
	}
}

// Option configures frame construction.
type Option func(*config)

type config struct {
	angles []AngleDefinition
}

func newConfig(opts []Option) config {
	c := config{angles: DefaultAngleDefinitions()}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// WithAngles replaces the default angle set. Calling it with no definitions
// disables named angles; the plumb line is still derived.
func WithAngles(defs ...AngleDefinition) Option {
	return func(c *config) {
		c.angles = append([]AngleDefinition(nil), defs...)
	}
}
