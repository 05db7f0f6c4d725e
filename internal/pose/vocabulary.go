package pose

// Joint identifies one of the 33 BlazePose landmarks. The numeric value is the
// landmark index emitted by the detector.
type Joint int

const (
	Nose Joint = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex

	NumJoints = 33
)

// vocabulary is indexed by Joint and must stay in detector order.
var vocabulary = [NumJoints]string{
	"nose",
	"left_eye_inner",
	"left_eye",
	"left_eye_outer",
	"right_eye_inner",
	"right_eye",
	"right_eye_outer",
	"left_ear",
	"right_ear",
	"mouth_left",
	"mouth_right",
	"left_shoulder",
	"right_shoulder",
	"left_elbow",
	"right_elbow",
	"left_wrist",
	"right_wrist",
	"left_pinky",
	"right_pinky",
	"left_index",
	"right_index",
	"left_thumb",
	"right_thumb",
	"left_hip",
	"right_hip",
	"left_knee",
	"right_knee",
	"left_ankle",
	"right_ankle",
	"left_heel",
	"right_heel",
	"left_foot_index",
	"right_foot_index",
}

// legacyAliases maps key spellings written by older detector builds.
var legacyAliases = map[string]Joint{
	"right_anle": RightAnkle,
}

var jointByName = func() map[string]Joint {
	m := make(map[string]Joint, NumJoints+len(legacyAliases))
	for i, name := range vocabulary {
		m[name] = Joint(i)
	}
	for alias, j := range legacyAliases {
		m[alias] = j
	}
	return m
}()

func (j Joint) String() string {
	if j < 0 || int(j) >= NumJoints {
		return "unknown"
	}
	return vocabulary[j]
}

// Valid reports whether j is part of the vocabulary.
func (j Joint) Valid() bool {
	return j >= 0 && int(j) < NumJoints
}

// Vocabulary returns the joint names in detector order.
func Vocabulary() []string {
	out := make([]string, NumJoints)
	copy(out, vocabulary[:])
	return out
}

// Joints returns every joint in detector order.
func Joints() []Joint {
	out := make([]Joint, NumJoints)
	for i := range out {
		out[i] = Joint(i)
	}
	return out
}

// ParseJoint resolves a joint name, including legacy aliases.
func ParseJoint(name string) (Joint, bool) {
	j, ok := jointByName[name]
	return j, ok
}

// aliasesOf returns the alternative key spellings accepted for j.
func aliasesOf(j Joint) []string {
	var out []string
	for alias, target := range legacyAliases {
		if target == j {
			out = append(out, alias)
		}
	}
	return out
}
