package help

const ColdstartYAML = `# pickpocket Quick Start

input:
  file: "ril_export.html from Pocket (Settings > Export)"
  sections:
    unread: "Links under the 'Unread' heading, always imported"
    read_archive: "Links under the 'Read Archive' heading, imported with --include-read"

import_modes:
  bulk: "Add every link at once (default)"
  stepwise: "Add one link per tick (--step-delay) or per Enter key (--confirm)"

backends:
  sqlite: "Local database next to the binary (default, --db to move it)"
  redis: "Redis list (--redis-addr, --redis-key)"
  dry-run: "Print what would be added, store nothing"

commands:
  preview_links: |
    pickpocket links ril_export.html
    pickpocket links ril_export.html --include-read --format yaml

  bulk_import: |
    pickpocket import ril_export.html

  stepwise_import: |
    pickpocket import ril_export.html --mode stepwise --step-delay 1s
    pickpocket import ril_export.html --mode stepwise --confirm

  with_previews: |
    pickpocket import ril_export.html --preview --cache-dir ./page-cache

  redis_import: |
    pickpocket --backend redis --redis-addr localhost:6379 import ril_export.html

  reading_list: |
    pickpocket items --limit 20
    pickpocket item https://go.dev/doc/effective_go
    pickpocket remove https://example.com/old-post
    pickpocket clear --yes   # import history is kept

  history: |
    pickpocket runs
    pickpocket run        # latest run
    pickpocket run 3

ordering:
  - "Links are added last to first so the reading list shows them in export order"
  - "A link that is already on the list moves to the top"

config_file: |
  # pickpocket --config pickpocket.yaml import ril_export.html
  backend: sqlite
  db_path: ./pickpocket.db
  mode: stepwise
  step_delay: 500ms
  include_read: true
  preview:
    enabled: true
    timeout: 10s
    cache_dir: ./page-cache
  report_dir: ./reports

error_behavior:
  - "Files without links: message and exit 1"
  - "Links that fail to add are counted and the import continues"
  - "Exit codes: 0=success, 1=partial failure or bad input, 2=complete failure"
`
