package grid

func officine() Info {
	var b builder

	return Info{
		ID:          "officine",
		Name:        "Inspection Officine",
		Code:        "IP-F-0018",
		Version:     "1",
		Description: "Grille d'inspection des officines de pharmacie",
		Sections: []Section{
			{ID: 1, Title: "Locaux et agencement", Items: []Criterion{
				b.pre("Loi 2021-03 Art 32", "L'officine dispose-t-elle d'une licence d'exploitation en cours de validité ?"),
				b.pre("Arrêté 005-2022 Art 4", "La surface minimale réglementaire est-elle respectée ?"),
				b.pre("Arrêté 005-2022 Art 5", "L'espace de vente permet-il la confidentialité des dispensations ?"),
				b.item("Arrêté 005-2022 Art 7", "Les locaux sont-ils propres, éclairés et correctement ventilés ?"),
				b.item("Arrêté 005-2022 Art 8", "Un préparatoire distinct et équipé est-il disponible ?"),
			}},
			{ID: 2, Title: "Personnel", Items: []Criterion{
				b.pre("Loi 2021-03 Art 34", "Le pharmacien titulaire est-il inscrit à l'Ordre et présent pendant les heures d'ouverture ?"),
				b.item("Loi 2021-03 Art 36", "Le nombre de pharmaciens adjoints est-il conforme au chiffre d'affaires ?"),
				b.item("Décret 2024-1301", "Le personnel auxiliaire exerce-t-il sous le contrôle effectif d'un pharmacien ?"),
				b.item("BPO 2.04", "Les formations continues du personnel sont-elles documentées ?"),
			}},
			{ID: 3, Title: "Stockage et conservation", Items: []Criterion{
				b.item("BPO 3.01", "Les conditions de température de conservation sont-elles respectées et relevées ?"),
				b.item("BPO 3.02", "Les produits thermosensibles sont-ils conservés dans une enceinte qualifiée ?"),
				b.item("BPO 3.03", "Les stupéfiants sont-ils détenus dans une armoire sécurisée ?"),
				b.item("BPO 3.05", "Les produits périmés sont-ils isolés du circuit de dispensation ?"),
				b.item("BPO 3.06", "La rotation des stocks suit-elle le principe premier périmé, premier sorti ?"),
			}},
			{ID: 4, Title: "Dispensation et traçabilité", Items: []Criterion{
				b.item("BPO 4.01", "Les ordonnances des médicaments listés sont-elles enregistrées à l'ordonnancier ?"),
				b.item("BPO 4.02", "Le registre des stupéfiants est-il tenu à jour et sans rature ?"),
				b.item("BPO 4.05", "L'approvisionnement provient-il exclusivement d'établissements autorisés ?"),
				b.item("BPO 4.07", "Une procédure de gestion des rappels de lots est-elle opérationnelle ?"),
			}},
		},
	}
}
