package business

// Type identifies a business vertical. It selects default intake fields,
// record-store columns and the system prompt template.
type Type string

const (
	TypeDentist Type = "dentist"
	TypeSalon   Type = "salon"
	TypeDoctor  Type = "doctor"
	TypeSpa     Type = "spa"
	TypeLawyer  Type = "lawyer"
	TypeGeneric Type = "generic"
)

// Weekdays lists the working-hours keys in calendar order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Profile is the declarative configuration of one business. An Agent is
// built from exactly one Profile; reconfiguring replaces the Agent.
type Profile struct {
	BusinessType        Type              `yaml:"business_type" koanf:"business_type" json:"business_type" validate:"required,oneof=dentist salon doctor spa lawyer generic"`
	BusinessName        string            `yaml:"business_name" koanf:"business_name" json:"business_name" validate:"required"`
	AssistantName       string            `yaml:"assistant_name" koanf:"assistant_name" json:"assistant_name" validate:"required"`
	Services            []string          `yaml:"services" koanf:"services" json:"services" validate:"required,min=1,dive,required"`
	WorkingHours        map[string]string `yaml:"working_hours" koanf:"working_hours" json:"working_hours" validate:"required,dive,keys,oneof=monday tuesday wednesday thursday friday saturday sunday,endkeys,workinghours"`
	AppointmentDuration int               `yaml:"appointment_duration" koanf:"appointment_duration" json:"appointment_duration" validate:"gte=5,lte=480"`
	BufferTime          int               `yaml:"buffer_time" koanf:"buffer_time" json:"buffer_time" validate:"gte=0,lte=240"`
	Timezone            string            `yaml:"timezone" koanf:"timezone" json:"timezone" validate:"required,timezone"`
	RequiredFields      []string          `yaml:"required_fields" koanf:"required_fields" json:"required_fields"`
	OptionalFields      []string          `yaml:"optional_fields" koanf:"optional_fields" json:"optional_fields"`
	CalendarID          string            `yaml:"calendar_id" koanf:"calendar_id" json:"calendar_id"`
	SheetID             string            `yaml:"sheet_id" koanf:"sheet_id" json:"sheet_id,omitempty"`
}
