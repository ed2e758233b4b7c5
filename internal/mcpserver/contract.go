package mcpserver

// ScheduleFormatContract describes the schedule line format that LLM
// consumers should follow when adding events through the MCP tools.
const ScheduleFormatContract = `# Luach Schedule Line Format

Each line added via the ` + "`" + `add_event` + "`" + ` tool describes one event.

## Forms

` + "```" + `
Name @ HH:MM                          fixed clock time
Name @ <zman> [+N|-N]                 astronomical time with optional offset in minutes
Name @ +N after <other event name>    N minutes after another event in the same column
Name @ -N after <other event name>    N minutes before another event in the same column
Free text without an @ sign           untimed announcement line
` + "```" + `

Any timed form may carry a rounding suffix:

` + "```" + `
Name @ <zman> [+N|-N] round <up|down|nearest> N
` + "```" + `

Rounding is not allowed on fixed ` + "`" + `HH:MM` + "`" + ` times.

## Zman keys

- ` + "`" + `sunrise` + "`" + ` and ` + "`" + `sunset` + "`" + ` (context-dependent: the column type picks the day)
- ` + "`" + `fridaySunrise` + "`" + ` and ` + "`" + `fridaySunset` + "`" + `
- ` + "`" + `shabbatCandles` + "`" + ` (candle lighting)
- ` + "`" + `shabbatEnd` + "`" + ` (havdalah)

Keys are case-insensitive.

## Rules

1. ` + "`" + `HH:MM` + "`" + ` uses a 24-hour clock; single-digit hours are accepted (` + "`" + `7:30` + "`" + `).
2. Offsets and rounding increments are whole minutes.
3. An ` + "`" + `after` + "`" + ` reference must name an event in the same column, matched
   case-insensitively against existing event names.
4. Lines starting with ` + "`" + `//` + "`" + ` are comments and are skipped.
5. Times that cross midnight wrap around (e.g. 23:50 + 30 minutes displays 00:20).

## Examples

` + "```" + `
Mincha @ shabbatCandles -20
Kabbalat Shabbat @ sunset -10 round nearest 5
Maariv @ +50 after Mincha
Shacharit @ 8:30
Kiddush after davening in the social hall
` + "```" + `
`
