package attendance

import (
	"fmt"
	"strings"
)

// Student is a fixed roster identity. RollNumber is the stable key all
// attendance records hang off; Name and Email are display conveniences.
type Student struct {
	RollNumber string `json:"roll_number"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
}

const (
	rollBase   = "237Z1A05"
	rosterSize = 65
)

type studentInfo struct {
	name  string
	email string
}

// studentNames maps known roll numbers to identities. Roll numbers missing
// from this table still appear in the roster with a placeholder identity.
var studentNames = map[string]studentInfo{
	"237Z1A0572": {"KANNARAPU KEERTHANA", "keerthana@example.com"},
	"237Z1A0573": {"KARNATI PAVAN REDDY", "pavan@example.com"},
	"237Z1A0574": {"KARUTURI SURYA NARAYANA", "surya@example.com"},
	"237Z1A0575": {"KASABU NIKHIL GOUD", "nikhil@example.com"},
	"237Z1A0576": {"KALVA SRIDHAR", "sridhar@example.com"},
	"237Z1A0577": {"KATHI REVANTH", "revanth@example.com"},
	"237Z1A0578": {"KATRAVTH PRIYANKA", "priyanka@example.com"},
	"237Z1A0579": {"KAVATI THARUN TEJA", "tharun@example.com"},
	"237Z1A0581": {"KHANDAVILLI HARSHITH GHANA SHYAM", "harshith@example.com"},
	"237Z1A0582": {"KOLLI SHANMUKH SRINIVAS", "shanmukh@example.com"},
	"237Z1A0583": {"KOMMULA GOPI CHARAN", "gopi@example.com"},
	"237Z1A0584": {"KONATHAM GNANESHWAR REDDY", "gnaneshwar@example.com"},
	"237Z1A0585": {"KONYALA SHANMUKHA SAI", "shanmukhasai@example.com"},
	"237Z1A0586": {"KOPPULA YAMINI", "yamini@example.com"},
	"237Z1A0587": {"KORRA GOVIND", "govind@example.com"},
	"237Z1A0589": {"KOVURI VEDHA SRI", "vedha@example.com"},
	"237Z1A0590": {"KUMKUMA PRAVALIKA", "pravalika@example.com"},
	"237Z1A0591": {"KUNTA SRUJANI", "srujani@example.com"},
	"237Z1A0592": {"KONTHAM RUCHITHA", "ruchitha@example.com"},
	"237Z1A0593": {"M MEENU VAISHNAVE", "meenu@example.com"},
	"237Z1A0594": {"MACHA SHIVANI", "shivani@example.com"},
	"237Z1A0595": {"MADERA SRAVAN", "sravan@example.com"},
	"237Z1A0596": {"MALA YADAGIRI", "yadagiri@example.com"},
	"237Z1A0597": {"MALLALA SRI LEKHA", "srilekha@example.com"},
	"237Z1A0598": {"MANCHALA ARAVIND", "aravind@example.com"},
	"237Z1A0599": {"MANCHI SHIVA SAI", "shivasai@example.com"},
	"237Z1A05A1": {"MANGALAPALLI SRAVANTHI", "sravanthi@example.com"},
	"237Z1A05A2": {"MANKA ROHINI", "rohini@example.com"},
	"237Z1A05A3": {"MARADUGU VENKATA SAI", "venkatasai@example.com"},
	"237Z1A05A4": {"MARATI PRANITHA", "pranitha@example.com"},
	"237Z1A05A5": {"MARKA SUDHINDRA GOUD", "sudhindra@example.com"},
	"237Z1A05A6": {"MARKA VIVEK", "vivek@example.com"},
	"237Z1A05A7": {"MATTEPU RENUKA LAKSHMI", "renuka@example.com"},
	"237Z1A05A8": {"MD ASAD AHMED", "asad@example.com"},
	"237Z1A05A9": {"MEESALA RAMYA", "ramya@example.com"},
	"237Z1A05B0": {"MOHAMMED ROUNAQ ALI", "rounaq@example.com"},
	"237Z1A05B1": {"MORA DEEPIKA", "deepika@example.com"},
	"237Z1A05B2": {"MULAGIRI SASAANK ANIRUDH", "sasaank@example.com"},
	"237Z1A05B3": {"MULJE VITTHAL DEVIDAS", "vitthal@example.com"},
	"237Z1A05B4": {"MUNIGANTI SHARANYA", "sharanya@example.com"},
	"237Z1A05B5": {"NAGULAPALLY RAVALI", "ravali@example.com"},
	"237Z1A05B6": {"NARAGONI SRI SIRI", "srisiri@example.com"},
	"237Z1A05B7": {"NAYKOTI PRASAD", "prasad@example.com"},
	"237Z1A05B8": {"ND LOKESH", "lokesh@example.com"},
	"237Z1A05B9": {"NEELAKANTAM SAKETH RAJU", "saketh@example.com"},
	"237Z1A05C0": {"NELLUTLA UMESH CHANDRA", "umesh@example.com"},
	"237Z1A05C1": {"NISU KUMARI", "nisu@example.com"},
	"237Z1A05C2": {"NOMULA KARNAKAR", "karnakar@example.com"},
	"237Z1A05C3": {"NOORANI", "noorani@example.com"},
	"237Z1A05C4": {"NUKALA VINOD KUMAR", "vinod@example.com"},
	"237Z1A05C5": {"O CHANDRAKIRAN", "chandrakiran@example.com"},
	"237Z1A05C6": {"PACHIPALA SARIKA", "sarika@example.com"},
	"237Z1A05C7": {"PADALA SAI SHASHANK", "shashank@example.com"},
	"237Z1A05C8": {"PEDDI SAI VENKAT SUMANTH", "sumanth@example.com"},
	"237Z1A05C9": {"PEDDI SHIVA", "shiva@example.com"},
	"237Z1A05D0": {"PINJALA BHARGAV", "bhargav@example.com"},
	"237Z1A05D1": {"PITTALA HARI BABU", "haribabu@example.com"},
	"237Z1A05D2": {"PODUPUGANTI GOVARDHAN", "govardhan@example.com"},
	"237Z1A05D3": {"POGU SAI SARATH", "sarath@example.com"},
	"237Z1A05D4": {"POLANA RAHUL", "rahul@example.com"},
	"237Z1A05D5": {"POLEPAKA MANICHARAN", "manicharan@example.com"},
	"237Z1A05D6": {"POOJARI MAHESH GOUD", "mahesh@example.com"},
	"237Z1A05D7": {"PUTTA CHARAN NAIDU", "charan@example.com"},
	"237Z1A05D8": {"RACHAKONDA MANASA", "manasa@example.com"},
	"237Z1A05D9": {"RAGI MANOHAR REDDY", "manohar@example.com"},
}

// rollNumbers enumerates the class roll numbers in roster order:
// numeric suffixes 72-99 (80 and 88 never enrolled), then letter+digit
// suffixes A1-D9 (A0 never enrolled), capped at the class size.
// The gaps are real-world roster exceptions, not a computed rule.
func rollNumbers() []string {
	rolls := make([]string, 0, rosterSize)

	for i := 72; i <= 99; i++ {
		if i == 80 || i == 88 {
			continue
		}
		rolls = append(rolls, fmt.Sprintf("%s%d", rollBase, i))
	}

	letters := []string{"A", "B", "C", "D"}
	digits := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	for _, letter := range letters {
		for _, digit := range digits {
			if letter == "A" && digit == "0" {
				continue
			}
			rolls = append(rolls, rollBase+letter+digit)
			if len(rolls) >= rosterSize {
				return rolls
			}
		}
	}
	return rolls
}

// Roster returns the fixed, ordered student list. It is deterministic: the
// same roll number always maps to the same position and display name.
func Roster() []Student {
	rolls := rollNumbers()
	students := make([]Student, 0, len(rolls))
	for _, roll := range rolls {
		if info, ok := studentNames[roll]; ok {
			students = append(students, Student{RollNumber: roll, Name: info.name, Email: info.email})
			continue
		}
		students = append(students, Student{
			RollNumber: roll,
			Name:       "Student " + roll[len(roll)-2:],
			Email:      strings.ToLower(roll) + "@example.com",
		})
	}
	return students
}
