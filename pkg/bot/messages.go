package bot

// User-facing texts. The bot talks Italian.
const (
	msgGreeting = "CiaoCiaoCiao! Sono FrecciaYoungSignorino e ti aiuterò a trovare i biglietti FrecciaYoung " +
		"senza sbatta.\n\nDa che città/stazione vuoi partire?"
	msgPickStation        = "Scegli la stazione."
	msgPickStationHint    = "Scegli la stazione..."
	msgAskArrival         = "In che stazione/città vuoi arrivare?"
	msgAskDate            = "Quando vuoi partire? (Inserisci la data in formato yyyy-mm-dd. Esempio: il 7 aprile 2024 sarebbe 2024-04-07)"
	msgNoTicketsForDate   = "Non ho trovato nessun biglietto per la data %s. Posso cercare nei giorni intorno alla data desiderata...\nQuanti giorni in anticipo potresti partire?"
	msgAskDaysAfter       = "Quanti giorni dopo potresti partire?"
	msgPickDaysHint       = "Scegli il numero di giorni..."
	msgNothingFound       = "Spiacente non ho trovato nessun biglietto %s :(."
	msgRecovery           = "Qualcosa è andato storto... prova ad inserire un altro valore o digita /" + CommandReset + " per iniziare da capo :("
)

const (
	CommandStart = "start"
	CommandReset = "sbatta"
)
