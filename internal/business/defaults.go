package business

// DefaultTimezone is used when a profile does not name one.
const DefaultTimezone = "America/New_York"

var defaultRequired = map[Type][]string{
	TypeDentist: {"name", "phone", "date_of_birth"},
	TypeDoctor:  {"name", "phone", "date_of_birth", "reason_for_visit"},
	TypeSalon:   {"name", "phone", "preferred_service"},
	TypeSpa:     {"name", "phone", "preferred_service"},
	TypeLawyer:  {"name", "phone", "case_type"},
	TypeGeneric: {"name", "phone"},
}

var defaultOptional = map[Type][]string{
	TypeDentist: {"insurance_provider", "emergency_contact", "notes"},
	TypeDoctor:  {"insurance_provider", "emergency_contact", "medications", "allergies"},
	TypeSalon:   {"hair_type", "previous_services", "allergies", "notes"},
	TypeSpa:     {"health_conditions", "allergies", "preferences", "notes"},
	TypeLawyer:  {"case_details", "urgency", "preferred_contact_method"},
	TypeGeneric: {"notes"},
}

// DefaultRequiredFields returns the intake fields a vertical needs before a
// booking can be committed. Unknown verticals fall back to generic.
func DefaultRequiredFields(t Type) []string {
	fields, ok := defaultRequired[t]
	if !ok {
		fields = defaultRequired[TypeGeneric]
	}
	return append([]string(nil), fields...)
}

// DefaultOptionalFields returns the optional intake fields for a vertical.
func DefaultOptionalFields(t Type) []string {
	fields, ok := defaultOptional[t]
	if !ok {
		fields = defaultOptional[TypeGeneric]
	}
	return append([]string(nil), fields...)
}

// Preset returns a ready-made profile for the dentist, salon and doctor
// verticals. Any other type yields a generic weekday 09:00-17:00 profile.
func Preset(t Type, businessName, assistantName string) Profile {
	var p Profile
	switch t {
	case TypeDentist:
		p = Profile{
			BusinessType:  TypeDentist,
			BusinessName:  "Dental Clinic",
			AssistantName: "Emily",
			Services: []string{
				"General Dentistry", "Preventive Care", "Cosmetic Dentistry",
				"Dental Cleanings", "Fillings", "Root Canals", "Crowns",
			},
			WorkingHours: map[string]string{
				"monday": "08:00-17:00", "tuesday": "08:00-17:00", "wednesday": "08:00-17:00",
				"thursday": "08:00-17:00", "friday": "08:00-16:00", "saturday": "", "sunday": "",
			},
			AppointmentDuration: 60,
		}
	case TypeSalon:
		p = Profile{
			BusinessType:  TypeSalon,
			BusinessName:  "Beauty Salon",
			AssistantName: "Sarah",
			Services: []string{
				"Haircuts", "Hair Styling", "Hair Coloring", "Highlights",
				"Hair Treatments", "Blowouts", "Updos", "Hair Extensions",
			},
			WorkingHours: map[string]string{
				"monday": "09:00-19:00", "tuesday": "09:00-19:00", "wednesday": "09:00-19:00",
				"thursday": "09:00-19:00", "friday": "09:00-19:00", "saturday": "09:00-17:00", "sunday": "10:00-16:00",
			},
			AppointmentDuration: 90,
		}
	case TypeDoctor:
		p = Profile{
			BusinessType:  TypeDoctor,
			BusinessName:  "Medical Clinic",
			AssistantName: "Alex",
			Services: []string{
				"General Consultation", "Health Checkups", "Preventive Care",
				"Chronic Disease Management", "Vaccinations", "Health Screenings",
			},
			WorkingHours: map[string]string{
				"monday": "08:00-18:00", "tuesday": "08:00-18:00", "wednesday": "08:00-18:00",
				"thursday": "08:00-18:00", "friday": "08:00-17:00", "saturday": "09:00-13:00", "sunday": "",
			},
			AppointmentDuration: 30,
		}
	default:
		p = Profile{
			BusinessType:  t,
			BusinessName:  "Our Office",
			AssistantName: "Sam",
			Services:      []string{"Consultation"},
			WorkingHours: map[string]string{
				"monday": "09:00-17:00", "tuesday": "09:00-17:00", "wednesday": "09:00-17:00",
				"thursday": "09:00-17:00", "friday": "09:00-17:00", "saturday": "", "sunday": "",
			},
			AppointmentDuration: 60,
		}
	}
	if businessName != "" {
		p.BusinessName = businessName
	}
	if assistantName != "" {
		p.AssistantName = assistantName
	}
	p.ApplyDefaults()
	return p
}
