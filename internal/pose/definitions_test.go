package pose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJoint(t *testing.T) {
	tests := []struct {
		name string
		want Joint
		ok   bool
	}{
		{"nose", Nose, true},
		{"right_ankle", RightAnkle, true},
		{"right_anle", RightAnkle, true},
		{"right_foot_index", RightFootIndex, true},
		{"Right_Ankle", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseJoint(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.name)
		}
	}

	for _, name := range Vocabulary() {
		j, ok := ParseJoint(name)
		require.True(t, ok, name)
		assert.Equal(t, name, j.String())
	}
}

func TestAngleDefinitionValidate(t *testing.T) {
	tests := []struct {
		name    string
		def     AngleDefinition
		wantErr bool
	}{
		{"joint angle", JointAngle("left_elbow", LeftShoulder, LeftElbow, LeftWrist), false},
		{"plumb line angle", PlumbLineAngle("left_shin_plumb", LeftKnee, LeftAnkle), false},
		{"zero value", AngleDefinition{}, true},
		{"named zero value", AngleDefinition{Name: "x"}, true},
		{"vertex repeated", JointAngle("x", LeftElbow, LeftElbow, LeftWrist), true},
		{"ends repeated", JointAngle("x", LeftShoulder, LeftElbow, LeftShoulder), true},
		{"plumb segment of one joint", PlumbLineAngle("x", LeftKnee, LeftKnee), true},
		{"unknown joint", PlumbLineAngle("x", LeftKnee, Joint(NumJoints)), true},
		{"unknown kind", AngleDefinition{Name: "x", Kind: AngleKind(7), From: Nose, To: LeftHip}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	for _, d := range DefaultAngleDefinitions() {
		assert.NoError(t, d.Validate(), d.String())
	}
}

func TestParseAngleDefinition(t *testing.T) {
	d, err := ParseAngleDefinition("right_knee_alt = right_hip, right_knee, right_anle")
	require.NoError(t, err)
	assert.Equal(t, JointAngle("right_knee_alt", RightHip, RightKnee, RightAnkle), d)

	d, err = ParseAngleDefinition("torso_lean=nose,left_hip")
	require.NoError(t, err)
	assert.Equal(t, PlumbLineAngle("torso_lean", Nose, LeftHip), d)

	for _, bad := range []string{
		"no_joints",
		"=nose,left_hip",
		"x=nose",
		"x=nose,left_hip,left_knee,left_ankle",
		"x=nose,tail",
		"x=left_knee,left_knee",
	} {
		_, err := ParseAngleDefinition(bad)
		assert.Error(t, err, bad)
	}
}
