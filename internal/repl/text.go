package repl

const Banner = `
 ____                        _         ____                      _
/ ___|  ___  _ __  _ __   ___| |_ ___  / ___|  ___  __ _ _ __ ___| |__
\___ \ / _ \| '_ \| '_ \ / _ \ __/ __| \___ \ / _ \/ _' | '__/ __| '_ \
 ___) | (_) | | | | | | |  __/ |_\__ \  ___) |  __/ (_| | | | (__| | | |
|____/ \___/|_| |_|_| |_|\___|\__|___/ |____/ \___|\__,_|_|  \___|_| |_|

Type a query to search the sonnets, or :help for commands.`

const Help = `Commands:
  :help                     show this help
  :quit                     exit
  :search-mode AND|OR       combine query words with AND or OR
  :highlight on|off         toggle match highlighting
  :hl-mode DEFAULT|GREEN    choose the highlight colour
  :stats                    show index and query statistics
Anything else is evaluated as a query.`

const unknownCommand = "Unknown command. Type :help for commands."
