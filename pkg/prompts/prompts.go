package prompts

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// templateFuncs provides utility functions for templates.
var templateFuncs = sprig.TxtFuncMap()

// LocationSystemPrompt is sent with every location generation request.
const LocationSystemPrompt = "You are a world generator for a text adventure game. Create interesting, thematically consistent locations. You MUST output valid JSON only."

// NarrationRequest asks for prose after tools ran without any narrative.
const NarrationRequest = "Describe what just happened in 2-3 sentences. Do not call any tools, just provide narrative."

// UserActionFormat wraps the player's input.
const UserActionFormat = "Player Action: %s"

const systemContextTemplate = `You are Dungeon Master for a text adventure game.
 Current Location: {{ .Name }} at {{ .Pos }}
 Description: {{ .Description }}
 Items here: [{{ join ", " .Items }}]
 Actors here: [{{ join ", " .Actors }}]
 Player Inventory: [{{ join ", " .Inventory }}]
 Player Money: {{ .Money }}

 Adjacent Areas: {{ range $i, $a := .Adjacent }}{{ if $i }}, {{ end }}{{ $a.Direction }}: {{ $a.Name }}{{ end }}
{{- with .Combat }}

 COMBAT ACTIVE - Round {{ .Round }} - Turn: {{ .Turn }}
 Combatants:
{{- range .Combatants }}
 - {{ .ID }} ({{ .Side }}): HP {{ .HP }}/{{ .MaxHP }} | Weapon: {{ .Weapon | default "none" }} | Armor: {{ .Armor | default "none" }} | Temp Def: {{ .TempDefense }} | Status: {{ join ", " .Effects | default "none" }}
{{- end }}

 Combat Actions: {{ join ", " .Actions }}
{{- end }}

 RULES:
 1. You can call MULTIPLE tools in ONE response.
 2. When calling tools: The narrative you generate should describe what happens AFTER tools execute.
 3. For movement: Use move_to(direction). New tiles are auto-generated if needed.
 4. For describing location: Use update_location_description(text) to permanently change location's description.
 5. For responding to player: Use generate_turn_narrative(text) if you want full control, or let the system generate narrative after your tools execute.
 6. If you call tools WITHOUT using generate_turn_narrative or adding narrative content, the system will ask you to describe what happened with the updated world state.
 7. End your response with 3-5 suggested actions (in the LLM content, not as a tool), one per line starting with "- ".
 8. NEVER generate JSON text - use tool calls instead.

 Available tools: {{ join ", " .Tools }}`

const locationTemplate = `Current Location: {{ .Name }} at {{ .From }}
Description: {{ .Description | trim }}

The player is heading {{ .Direction }} toward coordinates {{ .Target }}.
This grid cell is currently EMPTY and needs to be generated.

Create a new location at {{ .Target }} that fits thematically with current location.
IMPORTANT: All exits must be null (blocked). The game will create actual exit connections automatically.

Return ONLY a valid JSON object:
{
  "name": "Location name",
  "description": "Description of what the player sees",
  "image_prompt": "Visual description for generating an image",
  "exits": {"north": null, "south": null, "east": null, "west": null},
  "items": [],
  "actors": []
}

CRITICAL:
- exits MUST be null objects (blocked), NOT strings or booleans
- items MUST be an empty array []
- actors MUST be an empty array []
- NO narrative text, NO extra commentary

Just the JSON. Nothing else.`

var (
	systemContextTmpl = template.Must(template.New("system").Funcs(templateFuncs).Parse(systemContextTemplate))
	locationTmpl      = template.Must(template.New("location").Funcs(templateFuncs).Parse(locationTemplate))
)

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
