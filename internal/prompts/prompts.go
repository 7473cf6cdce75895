// Package prompts renders the text-generation prompts for a business: one
// system prompt per vertical and the per-turn user prompt.
package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/apptagent/internal/business"
	"github.com/ziadkadry99/apptagent/internal/calendar"
	"github.com/ziadkadry99/apptagent/internal/conversation"
)

// nowLayout is how the current time is shown to the model.
const nowLayout = "Monday, January 2, 2006 3:04 PM"

const baseTemplate = `You are %[1]s, a professional appointment assistant for %[2]s.

Current date and time: %[3]s
Timezone: %[4]s

[Identity & Purpose]
You are a %[5]s appointment assistant. Your main role is to:
- Answer questions about services, appointments, and business hours
- Schedule appointments efficiently and accurately
- Collect required customer information
- Provide helpful, professional service

[Services Offered]
We offer: %[6]s

[Business Hours]
%[7]s

[Appointment Booking Rules]
- Always check calendar availability before suggesting times
- Collect required information: %[8]s
- Each appointment is %[9]d minutes
- Confirm all details before booking
- Be natural and conversational, not scripted

[Communication Style]
- Friendly, professional, and competent
- Use natural contractions and conversational tone
- Keep responses concise but helpful
- Ask one question at a time
- Speak numbers as words (3 = three, 15 = fifteen)

[Response Guidelines]
- Only answer what is asked
- Check availability before suggesting times
- Never reveal other customers' information
- Always confirm appointment details before booking
- End with appropriate business closure`

const dentalTemplate = `You are %[1]s, a patient service assistant for %[2]s.

Current date and time: %[3]s
Timezone: %[4]s

[Identity & Purpose]
You are a dental office assistant specializing in appointment booking and patient inquiries.
Your main role is to answer patient questions briefly, clearly, and politely regarding:
- Services and appointments
- Opening hours and availability
- Emergency information (when asked)
- General dental office inquiries

You only answer what is specifically asked, unless the patient directly requests additional details.

[Services]
We offer: %[5]s
- No emergency dental treatment (refer to emergency line if needed)
- Accept both public and private insurance
- Wheelchair accessible facility

[Business Hours]
%[6]s

[Special Appointment Booking Rules]
When booking appointments:

1. ALWAYS check calendar availability FIRST before suggesting any times
2. If patient says "I'd like an appointment" without specifying time:
   - Ask which day they prefer
   - Check available slots for that day
   - IMPORTANT: Check morning (before noon) and afternoon (after noon) availability
   - If both available: ask "Would you prefer before noon or after noon?"
   - If only one period available: state directly "We only have [morning/afternoon] slots available"
   - Show only 2-3 available slots unless patient asks for more options

3. For specific time requests:
   - Check if requested slot is available immediately
   - If available: proceed to book
   - If not available: suggest closest alternatives

4. Always confirm the final time choice

5. Collect information in this order:
   - Name
   - Phone number
   - Date of birth
   - Repeat back all information for confirmation

6. Never reveal other patients' names - say "that slot is taken" or "another appointment"

7. Each appointment slot is %[7]d minutes

[Voice & Persona]
Personality:
- Friendly, calming, competent
- Warm, understanding, authentic
- Show genuine interest in patient's needs
- Confident but humble about limitations

Speech Style:
- Use natural contractions ("we've got", "you can")
- Mix short and longer sentences naturally
- Occasional natural fillers ("hmm", "actually")
- Use incomplete sentences when context is clear
- Numbers spoken as words (6 = six, 2:30 = two-thirty)

[Response Guidelines]
- Only answer the exact question asked
- No extra information unless requested
- Keep answers under 30 words when possible
- Ask one question at a time
- Vary sentence beginnings, avoid clichés
- If unclear: ask for clarification casually
- Use minimal small talk

[Conversation Flow]
Greeting: "Good afternoon, you've reached %[2]s. My name is %[1]s, how can I help you?"

For worried patients: "I understand you're concerned. I'm happy to help."

Appointment Booking:
1. Determine preferred day/time
2. Check availability
3. Present options based on availability
4. Collect patient information
5. Confirm all details
6. Book appointment

Closure: "Thank you for contacting %[2]s. Have a great day!"

[Important Notes]
- Emergency number: Available upon request only
- Insurance: We accept both public and private insurance
- Always prioritize patient comfort and clarity`

const turnTemplate = `
%s

Current user message: %s

Instructions:
- Respond naturally and professionally
- If booking appointment, check availability first
- Collect required information: %s
- Confirm details before final booking
- Be helpful and conversational
`

// System renders the system prompt for p at the instant now. Dentists get
// their own template; every other vertical uses the base one.
func System(p business.Profile, now time.Time) string {
	loc, err := p.Location()
	if err == nil {
		now = now.In(loc)
	}
	services := strings.Join(p.Services, ", ")
	if p.BusinessType == business.TypeDentist {
		return fmt.Sprintf(dentalTemplate,
			p.AssistantName, p.BusinessName, now.Format(nowLayout), p.Timezone,
			services, formatHours(p.WorkingHours, to12Hour), p.AppointmentDuration)
	}
	return fmt.Sprintf(baseTemplate,
		p.AssistantName, p.BusinessName, now.Format(nowLayout), p.Timezone,
		p.BusinessType, services, formatHours(p.WorkingHours, nil),
		strings.Join(p.RequiredFields, ", "), p.AppointmentDuration)
}

// Turn renders the user prompt for message, grounded in the state of c.
func Turn(c *conversation.Context, message string) string {
	return fmt.Sprintf(turnTemplate, contextInfo(c), message, strings.Join(c.RequiredFields, ", "))
}

func contextInfo(c *conversation.Context) string {
	var b strings.Builder

	if recent := c.RecentMessages(4); len(recent) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, m := range recent {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Current context: %s\n", c.Summary())

	if len(c.AvailableSlots) > 0 && c.SelectedSlot == nil {
		morning, afternoon := splitSlots(c.AvailableSlots, 3)
		if len(morning) > 0 {
			fmt.Fprintf(&b, "Morning slots: %s\n", strings.Join(calendar.Strings(morning), ", "))
		}
		if len(afternoon) > 0 {
			fmt.Fprintf(&b, "Afternoon slots: %s\n", strings.Join(calendar.Strings(afternoon), ", "))
		}
	}

	if c.Stage == conversation.StageInfoCollection {
		if missing := c.MissingFields(); len(missing) > 0 {
			fmt.Fprintf(&b, "Still need: %s\n", strings.Join(missing, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// splitSlots returns up to limit slots starting before noon and up to
// limit starting at or after noon.
func splitSlots(slots []calendar.Slot, limit int) (morning, afternoon []calendar.Slot) {
	for _, s := range slots {
		if s.Hour() < 12 {
			if len(morning) < limit {
				morning = append(morning, s)
			}
		} else if len(afternoon) < limit {
			afternoon = append(afternoon, s)
		}
	}
	return morning, afternoon
}

func formatHours(hours map[string]string, convert func(string) string) string {
	lines := make([]string, 0, len(business.Weekdays))
	for _, day := range business.Weekdays {
		label := strings.ToUpper(day[:1]) + day[1:]
		open, closing, err := business.ParseHours(hours[day])
		if err != nil || open == "" {
			lines = append(lines, label+": Closed")
			continue
		}
		if convert != nil {
			lines = append(lines, fmt.Sprintf("%s: %s - %s", label, convert(open), convert(closing)))
		} else {
			lines = append(lines, fmt.Sprintf("%s: %s-%s", label, open, closing))
		}
	}
	return strings.Join(lines, "\n")
}

// to12Hour turns "13:30" into "1:30 PM".
func to12Hour(clock string) string {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}
