package persona

type nameGroup struct {
	background string
	names      []string
}

// fallbackFirstNames feed local name synthesis when the service keeps
// repeating itself. Grouped by cultural background to keep draws varied.
var fallbackFirstNames = []nameGroup{
	{"West African", []string{"Adaeze", "Chinedu", "Kwame", "Abena", "Oluwaseun", "Folake", "Kofi", "Amaka", "Ifeoma", "Tunde", "Yaw", "Efua"}},
	{"East African", []string{"Wanjiru", "Baraka", "Nia", "Juma", "Amani", "Zawadi", "Tesfaye", "Selam", "Makena"}},
	{"East Asian", []string{"Haruto", "Yuki", "Minjun", "Seo-yeon", "Wei", "Lan", "Jiho", "Aiko", "Ren", "Mei", "Daichi", "Hana"}},
	{"Southeast Asian", []string{"Thanh", "Linh", "Arief", "Putri", "Somchai", "Malai", "Rizal", "Dewi", "Bao", "Ketut"}},
	{"South Asian", []string{"Arjun", "Ishaan", "Kavya", "Ananya", "Rohan", "Meera", "Vikram", "Tanvi", "Farhan", "Nadia", "Sanjay", "Lakshmi"}},
	{"Middle Eastern", []string{"Omar", "Layla", "Karim", "Yasmin", "Tariq", "Samira", "Idris", "Noor", "Rami", "Dalia", "Hassan", "Leila"}},
	{"Latin American", []string{"Mateo", "Valentina", "Santiago", "Camila", "Joaquín", "Lucía", "Diego", "Ximena", "Emilio", "Renata", "Tomás", "Paloma"}},
	{"Southern European", []string{"Giulia", "Lorenzo", "Chiara", "Matteo", "Inês", "Duarte", "Eleni", "Nikos", "Pilar", "Álvaro"}},
	{"Western European", []string{"Margaux", "Bastien", "Annelies", "Joris", "Clémence", "Florian", "Saoirse", "Cillian", "Rhiannon", "Gareth"}},
	{"Nordic", []string{"Astrid", "Leif", "Sigrid", "Henrik", "Ingrid", "Magnus", "Freya", "Soren", "Linnea", "Eero"}},
	{"Eastern European", []string{"Katarzyna", "Bogdan", "Milena", "Dmitri", "Oksana", "Andrei", "Zofia", "Petra", "Tomasz", "Irina"}},
	{"Pacific Islander", []string{"Keoni", "Leilani", "Sione", "Malia", "Tavita", "Moana", "Kai", "Ana"}},
	{"Indigenous American", []string{"Ayasha", "Takoda", "Winona", "Chayton", "Halona", "Kiona", "Dakota", "Nayeli"}},
	{"North American", []string{"Brooke", "Wyatt", "Harper", "Colton", "Reese", "Tucker", "Delaney", "Grady", "Marisol", "Desmond", "Imani", "Jalen"}},
}

// fallbackLastNames pair with fallbackFirstNames; the draw is independent.
var fallbackLastNames = []nameGroup{
	{"African", []string{"Okonkwo", "Mensah", "Adeyemi", "Kamau", "Haile", "Boateng", "Nwosu", "Achieng"}},
	{"East Asian", []string{"Takahashi", "Nakamura", "Park", "Choi", "Zhao", "Lin", "Watanabe", "Huang"}},
	{"Southeast Asian", []string{"Nguyen", "Santoso", "Reyes", "Wongsakul", "Tran", "Halim"}},
	{"South Asian", []string{"Iyer", "Chatterjee", "Malhotra", "Siddiqui", "Reddy", "Bose", "Kapoor"}},
	{"Middle Eastern", []string{"Haddad", "Nasser", "Rahimi", "Khoury", "Farouk", "Aziz"}},
	{"Latin American", []string{"Castillo", "Herrera", "Vargas", "Mendoza", "Quispe", "Salazar", "Ortega"}},
	{"European", []string{"Rossi", "Moreau", "Dubois", "Novak", "Kowalski", "Lindqvist", "Halvorsen", "Brennan", "Vogel", "Costa", "Papadopoulos", "Van der Berg"}},
	{"Pacific Islander", []string{"Kahananui", "Tuilagi", "Faleolo", "Mahoe"}},
	{"Indigenous American", []string{"Begay", "Yazzie", "Running Water", "Tsosie"}},
	{"North American", []string{"Whitaker", "Callahan", "Prescott", "Holloway", "Merritt", "Lockhart", "Dunmore"}},
}

// overusedNames are excluded in the prompt; models fall back on them constantly.
var overusedNames = []string{
	"Sarah Chen", "Maya Patel", "Alex Johnson", "Emily Rodriguez", "Priya Sharma",
	"Marcus Johnson", "Elena Rodriguez", "David Kim", "Jessica Miller", "Aisha Khan",
}

func flatten(groups []nameGroup) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g.names...)
	}
	return out
}

var (
	allFallbackFirstNames = flatten(fallbackFirstNames)
	allFallbackLastNames  = flatten(fallbackLastNames)
)
