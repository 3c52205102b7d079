package dataset

import "ayurpredict/ml"

// Symptom vocabularies used to synthesize training rows.
var (
	VataSymptoms = []string{
		"dry skin", "constipation", "anxiety", "joint pain", "irregular digestion",
		"insomnia", "nervousness", "dizziness", "trembling", "muscle twitches",
		"cold hands feet", "dry cough", "hoarse voice", "cracking joints",
		"restlessness", "worry", "fear", "confusion", "memory loss",
		"thin body", "weight loss", "bloating", "gas formation", "abdominal pain",
		"irregular appetite", "scanty urination", "dry hair", "brittle nails",
		"rough skin", "premature aging", "wrinkles", "stiffness", "arthritis",
		"sciatica", "paralysis", "convulsions", "epilepsy", "depression mood swings",
		"rapid speech", "talkativeness", "hyperactivity", "palpitations",
		"irregular heartbeat", "low blood pressure", "fainting", "weakness",
		"fatigue", "exhaustion", "noise sensitivity", "light sensitivity",
		"touch sensitivity", "irregular menstruation", "painful periods",
		"dry vagina", "premature ejaculation", "impotence", "infertility",
	}

	PittaSymptoms = []string{
		"acidity", "burning sensation", "anger", "skin inflammation", "excessive heat",
		"irritability", "impatience", "jealousy", "criticism", "perfectionism",
		"hyperacidity", "heartburn", "ulcers", "diarrhea", "loose stools",
		"yellow urine", "excessive urination", "sweating", "body odor",
		"premature graying", "baldness", "red eyes", "yellow eyes",
		"skin rashes", "acne", "eczema", "psoriasis", "hives",
		"fever", "inflammation", "infection", "boils", "abscesses",
		"excessive appetite", "thirst", "craving cold drinks", "aversion to heat",
		"yellow complexion", "red complexion", "hot flashes", "night sweats",
		"sharp hunger", "cannot skip meals", "nausea", "vomiting bile",
		"bitter taste", "sour taste", "metallic taste", "bleeding gums",
		"nose bleeding", "heavy periods", "early periods", "red blood",
		"hypertension", "migraine", "tension headache", "eye strain",
		"photophobia", "conjunctivitis", "stye", "visual disturbances",
		"liver disorders", "gallbladder problems", "jaundice", "hepatitis",
	}

	KaphaSymptoms = []string{
		"congestion", "weight gain", "lethargy", "cold limbs", "excessive sleep",
		"sluggishness", "heaviness", "dullness", "attachment", "greed",
		"possessiveness", "depression", "lack motivation", "procrastination",
		"excess mucus", "phlegm", "cough with mucus", "runny nose",
		"sinus congestion", "post nasal drip", "allergies", "asthma",
		"bronchitis", "pneumonia", "fluid retention", "swelling", "edema",
		"obesity", "slow digestion", "slow metabolism", "nausea after eating",
		"sweet taste mouth", "excess saliva", "thick white coating tongue",
		"pale skin", "oily skin", "large pores", "thick hair", "oily hair",
		"slow healing", "slow movements", "slow speech", "monotone voice",
		"cold skin", "cold extremities", "low body temperature", "feeling cold",
		"high cholesterol", "diabetes", "hypothyroid", "low blood pressure",
		"slow pulse", "regular appetite", "craving sweets", "craving dairy",
		"difficulty waking", "oversleeping", "daytime sleepiness", "mental fog",
		"slow comprehension", "good memory", "loyal nature", "calm disposition",
		"delayed periods", "heavy periods", "white discharge", "cysts", "tumors",
	}

	// NoMatchSymptoms describe conditions outside the three dosha patterns.
	NoMatchSymptoms = []string{
		"broken bone", "car accident", "gunshot wound", "appendicitis",
		"heart attack", "stroke", "cancer tumor", "chemotherapy side effects",
		"surgical complications", "antibiotic reaction", "food poisoning bacteria",
		"viral pneumonia", "covid symptoms", "influenza fever",
		"malaria parasites", "dengue fever", "typhoid bacteria",
		"kidney stones", "gallstones", "herniated disc",
		"torn ligament", "fractured skull", "concussion brain injury",
		"spinal cord injury", "nerve damage", "muscle tear",
		"dislocated shoulder", "tennis elbow", "carpal tunnel syndrome",
		"sports injury", "workplace accident", "burn injury",
	}
)

// SymptomsFor returns the vocabulary for a dosha label.
func SymptomsFor(label ml.Label) []string {
	switch label {
	case ml.Vata:
		return VataSymptoms
	case ml.Pitta:
		return PittaSymptoms
	case ml.Kapha:
		return KaphaSymptoms
	case ml.NoMatch:
		return NoMatchSymptoms
	}
	return nil
}

// ExpertCases are curated rows drawn from classical descriptions of each dosha.
var ExpertCases = []Row{
	{Symptoms: "dry skin constipation joint pain anxiety irregular digestion insomnia", Dosha: ml.Vata, NumSymptoms: 6},
	{Symptoms: "nervousness trembling cold hands feet dry cough restlessness memory loss", Dosha: ml.Vata, NumSymptoms: 6},
	{Symptoms: "weight loss bloating gas formation abdominal pain irregular appetite", Dosha: ml.Vata, NumSymptoms: 5},
	{Symptoms: "acidity heartburn anger excessive heat irritability yellow urine", Dosha: ml.Pitta, NumSymptoms: 6},
	{Symptoms: "skin inflammation burning sensation fever red eyes excessive sweating", Dosha: ml.Pitta, NumSymptoms: 5},
	{Symptoms: "ulcers diarrhea sharp hunger bitter taste excessive thirst", Dosha: ml.Pitta, NumSymptoms: 5},
	{Symptoms: "congestion weight gain lethargy excessive sleep cold limbs sluggishness", Dosha: ml.Kapha, NumSymptoms: 6},
	{Symptoms: "excess mucus cough with mucus runny nose slow digestion sweet taste mouth", Dosha: ml.Kapha, NumSymptoms: 5},
	{Symptoms: "fluid retention swelling obesity slow metabolism oily skin thick hair", Dosha: ml.Kapha, NumSymptoms: 6},
}
