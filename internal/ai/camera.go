package ai

// CameraAngle names a target perspective for the enhancement prompt.
type CameraAngle string

const (
	AngleOriginal CameraAngle = "original"

	AngleCornerLeft       CameraAngle = "corner-left"
	AngleCornerRight      CameraAngle = "corner-right"
	AngleCornerFrontLeft  CameraAngle = "corner-front-left"
	AngleCornerFrontRight CameraAngle = "corner-front-right"

	AngleFront     CameraAngle = "front"
	AngleEyeLevel  CameraAngle = "eye-level"
	AngleLowAngle  CameraAngle = "low-angle"
	AngleHighAngle CameraAngle = "high-angle"

	AngleTwoPointLeft  CameraAngle = "two-point-left"
	AngleTwoPointRight CameraAngle = "two-point-right"
	AngleSlightAngle   CameraAngle = "slight-angle"

	AngleTiltUp   CameraAngle = "tilt-up"
	AngleTiltDown CameraAngle = "tilt-down"

	AngleBirdsEye CameraAngle = "birds-eye"
	AngleDrone    CameraAngle = "drone"
	AngleWormsEye CameraAngle = "worms-eye"

	AngleWideAngle    CameraAngle = "wide-angle"
	AngleInteriorLong CameraAngle = "interior-long"
	AngleExteriorLong CameraAngle = "exterior-long"
	AngleBalcony      CameraAngle = "balcony"
	AngleEntrance     CameraAngle = "entrance"
	AngleBackyard     CameraAngle = "backyard"
)

const (
	GroupCorner      = "Corner"
	GroupOnePoint    = "One-Point"
	GroupTwoPoint    = "Two-Point"
	GroupThreePoint  = "Three-Point"
	GroupAerial      = "Aerial & Ground"
	GroupSpecialized = "Specialized"
)

// genericAngleClause is used for angles missing from the table. Validate keeps
// it unreachable from request input.
const genericAngleClause = "Adjust the camera angle appropriately."

type CameraAngleOption struct {
	Angle  CameraAngle `json:"value"`
	Group  string      `json:"group"`
	Phrase string      `json:"phrase"`
}

var cameraAngles = [...]CameraAngleOption{
	{AngleCornerLeft, GroupCorner, "Reimagine the view from the left corner perspective."},
	{AngleCornerRight, GroupCorner, "Reimagine the view from the right corner perspective."},
	{AngleCornerFrontLeft, GroupCorner, "Show a front-left corner perspective view."},
	{AngleCornerFrontRight, GroupCorner, "Show a front-right corner perspective view."},

	{AngleFront, GroupOnePoint, "Adjust to a perfect straight-on front view (one-point perspective)."},
	{AngleEyeLevel, GroupOnePoint, "Set the camera angle to eye-level front view."},
	{AngleLowAngle, GroupOnePoint, "Use a low angle shot to make the property look grand and imposing."},
	{AngleHighAngle, GroupOnePoint, "Use a high angle shot to show more of the layout."},

	{AngleTwoPointLeft, GroupTwoPoint, "Apply a two-point perspective focusing on the left side."},
	{AngleTwoPointRight, GroupTwoPoint, "Apply a two-point perspective focusing on the right side."},
	{AngleSlightAngle, GroupTwoPoint, "Slightly angle the view to add depth (two-point perspective)."},

	{AngleTiltUp, GroupThreePoint, "Tilt the camera up to showcase height or skyscrapers (three-point perspective)."},
	{AngleTiltDown, GroupThreePoint, "Tilt the camera down from a height (three-point perspective)."},

	{AngleBirdsEye, GroupAerial, "Transform into a bird’s eye view aerial shot."},
	{AngleDrone, GroupAerial, "Simulate a high-quality drone shot from above."},
	{AngleWormsEye, GroupAerial, "Use a worm’s eye view from very low ground level."},

	{AngleWideAngle, GroupSpecialized, "Use a wide-angle lens to capture the entire room or exterior."},
	{AngleInteriorLong, GroupSpecialized, "Use a long shot to show the depth of the interior space."},
	{AngleExteriorLong, GroupSpecialized, "Use a long shot to capture the full exterior context."},
	{AngleBalcony, GroupSpecialized, "Simulate a view looking out from a balcony."},
	{AngleEntrance, GroupSpecialized, "Focus the perspective on the main entrance."},
	{AngleBackyard, GroupSpecialized, "Show the view from the backyard looking towards the property."},
}

// cameraAngleCount is the number of named angles above, excluding AngleOriginal.
// The two declarations below stop compiling if the table and the count drift apart.
const cameraAngleCount = 22

var (
	_ [len(cameraAngles) - cameraAngleCount]struct{}
	_ [cameraAngleCount - len(cameraAngles)]struct{}
)

var cameraPhrases = func() map[CameraAngle]string {
	m := make(map[CameraAngle]string, len(cameraAngles))
	for _, o := range cameraAngles {
		m[o.Angle] = o.Phrase
	}
	return m
}()

// CameraAngles lists the supported perspectives in display order.
func CameraAngles() []CameraAngleOption {
	out := make([]CameraAngleOption, len(cameraAngles))
	copy(out, cameraAngles[:])
	return out
}

func (a CameraAngle) Valid() bool {
	if a == AngleOriginal {
		return true
	}
	_, ok := cameraPhrases[a]
	return ok
}

// phrase returns the clause for a non-original angle, falling back to a generic instruction.
func (a CameraAngle) phrase() string {
	if p, ok := cameraPhrases[a]; ok {
		return p
	}
	return genericAngleClause
}
