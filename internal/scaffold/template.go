// Package scaffold provides the tixmail.yaml template written by init.
package scaffold

// EventYAMLTemplate is the starter event config. Parsed, it equals
// config.DefaultEvent; relative paths resolve against the file's directory.
const EventYAMLTemplate = `# tixmail event configuration
version: 1

event:
  title: Hackathon
  dates: ""

# First token issued on a fresh run. Later runs continue after the highest
# token found in either ledger.
base_token: 1000

# Retry participants whose earlier attempt failed.
retry_failed: true

# Roster: .xlsx, .csv or .json with name, email, universityId, year columns.
roster: participants.xlsx

ledger:
  # csv, xlsx, json or sqlite; inferred from the success path when empty.
  format: ""
  success: sent_participants.csv
  failure: failed_email_participants.csv
  snapshot: participants_snapshot.json
  retain_superseded_failures: false

artifact:
  # image (PNG drawn on template) or pdf
  kind: image
  template: ticket.png
  font: ""
  output_dir: tickets
  title_size: 70
  detail_size: 60

message:
  subject: Your Hackathon Participation Token
  body: |
    Hi {{.Name}},

    Your token is: {{.Token}}.

    Please find your ticket attached.

    Best regards,
    Team

state_dir: .tixmail
`
