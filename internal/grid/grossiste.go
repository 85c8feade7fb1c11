package grid

func grossiste() Info {
	var b builder

	return Info{
		ID:          "grossiste",
		Name:        "Inspection Grossiste-Répartiteur",
		Code:        "IP-FO-0002",
		Version:     "1",
		Description: "Grille d'inspection des établissements de grossiste-répartiteur selon les BPD/UEMOA",
		Sections: []Section{
			{ID: 1, Title: "Organisation et gestion", Items: []Criterion{
				b.pre("BPD/I UEMOA 1.01 ; Loi 2021-03 Art 56", "L'établissement est-il dûment autorisé ? Dispose-t-il d'un pharmacien responsable de l'ensemble des opérations de distribution ?"),
				b.pre("BPD/I UEMOA 1.02", "Organigramme défini ? Responsabilités, autorité et relations clairement représentées ?"),
				b.item("BPD/I UEMOA 1.04", "Le pharmacien et le personnel clé ont-ils l'autorité et les ressources pour maintenir le système d'assurance qualité ?"),
				b.item("BPD/I UEMOA 1.07", "Responsabilités individuelles clairement définies et consignées dans des descriptions de fonction écrites ?"),
				b.item("BPD/I UEMOA 1.08", "Activités sous-traitées précisées dans des cahiers des charges ou contrats écrits ? Audits réguliers ?"),
			}},
			{ID: 2, Title: "Gestion de la qualité", Items: []Criterion{
				b.pre("BPD/I UEMOA 1.10, 1.11", "Système d'assurance qualité en place intégrant les principes des BPD ?"),
				b.pre("BPD/I UEMOA 1.15", "Procédures approuvées pour l'approvisionnement et la libération des livraisons ? Fournisseurs et distributeurs approuvés ?"),
				b.pre("BPD/I UEMOA 1.16", "Procédures écrites et systèmes d'enregistrement garantissant la traçabilité des produits distribués ?"),
			}},
			{ID: 3, Title: "Personnel", Items: []Criterion{
				b.pre("BPD/I UEMOA 1.19", "Tout le personnel engagé dans la distribution formé aux exigences des BPD ?"),
				b.pre("BPD/I UEMOA 1.21", "Nombre suffisant de personnes compétentes à tous les stades de la distribution ?"),
				b.item("BPD/I UEMOA 1.25", "Formation spécifique pour le personnel manipulant des produits dangereux (stupéfiants, produits très actifs, radioactifs) ?"),
				b.item("Décret 2024-1301 ; Loi 2021-03", "Pharmacien responsable avec au moins 5 ans d'expérience en officine ou 2 ans en distribution en gros ?"),
			}},
			{ID: 4, Title: "Documentation", Items: []Criterion{
				b.pre("BPD/I UEMOA 1.30", "Instructions écrites et enregistrements disponibles pour toutes les activités de distribution ?"),
				b.item("BPD/I UEMOA 1.33", "Documents revus régulièrement et mis à jour ?"),
				b.item("BPD/I UEMOA 1.35", "Enregistrements informatisés protégés par des procédures de sauvegarde ?"),
			}},
			{ID: 5, Title: "Rappels de produits", Items: []Criterion{
				b.item("BPD/I UEMOA 1.43", "Système de rappel pour les produits reconnus ou soupçonnés comme défectueux ?"),
				b.item("BPD/I UEMOA 1.47", "Système de distribution permettant de connaître l'identité et l'adresse des destinataires ? Traçabilité complète ?"),
				b.item("BPD/I UEMOA 1.48", "Produits rappelés séparés physiquement et stockés en zone sécurisée ?"),
			}},
		},
	}
}
