package campus

// Library
const (
	NoteFound = "While you study the old volumes, a yellowed slip of paper drifts out from between the pages. " +
		"It reads: \"If you seek true knowledge, go to the hall of the code gods, Der-Tian Hall. " +
		"Only those who master the power of binary may glimpse the truth.\" This is clearly the key to your next step!"
	FloorPrompt = "Choose a floor to explore: 3, 2, 1 or the basement (4)."
)

// Der-Tian Hall gate
const (
	GateCode     = "9527"
	GatePrompt   = "Holding the note, you sense strange energy pulsing from the high-voltage field ahead..."
	GateQuestion = "High-voltage security system: enter the four-digit code. Convert these binary numbers to decimal: 1001, 101, 10, 111."
	GateHint     = "Binary to decimal:\n1001 = 9\n101 = 5\n10 = 2\n111 = 7\n\nJoin the four numbers in order..."
	GateSuccess  = "Past the high-voltage field, the head code god walks up with a smile: \"Your binary skills are impressive! " +
		"Take this custom squash racket as your reward. There's a place on campus for sports lovers. Maybe you should look there?\""
	GateFailure  = "Access denied. The security system rejects the code."
)

// GateBinary is the prompt the gate code is derived from.
var GateBinary = []string{"1001", "101", "10", "111"}

// Sports center
const (
	SquashPrompt = "You reach the squash courts. Time for a match! Roll higher than your opponent to return the shot."
	SquashWin    = "You rolled %d, your opponent %d. You win! You get a McDonald's coupon."
	SquashTie    = "You rolled %d, your opponent %d. A tie. Keep trying!"
	SquashLoss   = "You rolled %d, your opponent %d. Too bad, you lost."
)

// Activity center
const (
	EscortPrompt   = "Coupon in hand, you consider joining the McDonald's line. An old man asks you to take him to the Astronomy-Mathematics Building."
	EscortAccepted = "You received the decryption key d=3. Time to head to the Astronomy-Mathematics Building!"
	EscortDeclined = "You decline. The old man shuffles off into the crowd."
)

// Astronomy-Mathematics building
const (
	Cipher         = "IXEHOO"
	CipherKey      = 3
	DecryptPrompt  = "The old professor: \"With the key d=3, I can break the ciphertext IXEHOO.\" Enter the plaintext."
	DecryptSuccess = "You received a mysterious hint: FUBELL. Where could that be?"
	DecryptFailure = "Wrong answer. Try again."
)

// Fu Bell
const (
	BellPrompt   = "You feel the bell's echo, and a voice whispers to you..."
	BellQuestion = "The Fu Bell spirit's trial: how many times does the Fu Bell ring at the start and end of each class?"
	BellAnswer   = "A"
	BellCorrect  = "The Fu Bell relic is yours! All five tokens are gathered. Go to the lake pavilion and activate the magic circle!"
	BellWrong    = "This semester won't escape the curse of 21..."
	BellDone     = "The Fu Bell relic is in hand. Time stands still in the toll of the bell..."
)

// BellChoices are the quiz options keyed by letter.
var BellChoices = map[string]string{
	"A": "21",
	"B": "24",
	"C": "27",
}

// Lake pavilion and freshman center
const (
	SummonPrompt   = "The five tokens hum in your bag. Activate the magic circle?"
	SummonSuccess  = "Five beams connect: Der-Tian Hall, Sports Center, Activity Center, Astronomy-Mathematics, Fu Bell and the Lake Pavilion! The Freshman Teaching Building lights up!"
	SummonDone     = "The magic circle is active! The Freshman Teaching Building is glowing."
	SummonRejected = "The lake is still. You don't hold every token yet."
	Certificate    = "Congratulations on passing every trial! You gathered all the tokens and activated the magic circle.\n\n" +
		"CERTIFICATE OF ADMISSION\nThe holder has completed the NTU freshman trial.\n\nWelcome to NTU!"
)
