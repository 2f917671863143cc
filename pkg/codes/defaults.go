package codes

// Defaults returns the built-in configurations for the Uzbek codes published
// on lex.uz. MaxArticle is only set where the highest article number is
// known; other codes rely on superscript markers for inserted articles and
// can be given a maximum through a YAML override.
func Defaults() []*CodeConfig {
	return []*CodeConfig{
		{
			Identity:      Civil,
			Name:          "Гражданский кодекс",
			Abbreviation:  "ГК РУз",
			MaxArticle:    1199,
			DetectionKeys: []string{"civil code p1", "civil code p2", "civil code part1", "civil code part2", "civil"},
			DocumentIDs:   []string{"111181", "180550"},
			URL:           "https://lex.uz/ru/docs/111181",
		},
		{
			Identity:      Criminal,
			Name:          "Уголовный кодекс",
			Abbreviation:  "УК РУз",
			DetectionKeys: []string{"criminal"},
			DocumentIDs:   []string{"111457"},
			URL:           "https://lex.uz/ru/docs/111457",
		},
		{
			Identity:      Family,
			Name:          "Семейный кодекс",
			Abbreviation:  "СК РУз",
			DetectionKeys: []string{"family"},
			DocumentIDs:   []string{"104723"},
			URL:           "https://lex.uz/ru/docs/104723",
		},
		{
			Identity:      Labor,
			Name:          "Трудовой кодекс",
			Abbreviation:  "ТК РУз",
			DetectionKeys: []string{"labor", "labour"},
			DocumentIDs:   []string{"6257291"},
			URL:           "https://lex.uz/ru/docs/6257291",
		},
		{
			Identity:      Administrative,
			Name:          "Кодекс об административной ответственности",
			Abbreviation:  "КоАО РУз",
			MaxArticle:    348,
			DetectionKeys: []string{"administrative"},
			DocumentIDs:   []string{"97661"},
			URL:           "https://lex.uz/ru/docs/97661",
		},
		{
			Identity:      Budget,
			Name:          "Бюджетный кодекс",
			Abbreviation:  "БК РУз",
			DetectionKeys: []string{"budget"},
			DocumentIDs:   []string{"2304140"},
			URL:           "https://lex.uz/ru/docs/2304140",
		},
		{
			Identity:      CivilProcedure,
			Name:          "Гражданский процессуальный кодекс",
			Abbreviation:  "ГПК РУз",
			DetectionKeys: []string{"civil procedure", "civil procedural", "civil_procedure"},
			DocumentIDs:   []string{"3517334"},
			URL:           "https://lex.uz/ru/docs/3517334",
		},
		{
			Identity:      Constitution,
			Name:          "Конституция",
			Abbreviation:  "Конституция РУз",
			DetectionKeys: []string{"constitution"},
			DocumentIDs:   []string{"6445147"},
			URL:           "https://lex.uz/docs/6445147",
		},
		{
			Identity:      CriminalExecutive,
			Name:          "Уголовно-исполнительный кодекс",
			Abbreviation:  "УИК РУз",
			DetectionKeys: []string{"criminal executive", "criminal-executive", "criminal_executive"},
			DocumentIDs:   []string{"163627"},
			URL:           "https://lex.uz/ru/docs/163627",
		},
		{
			Identity:      Customs,
			Name:          "Таможенный кодекс",
			Abbreviation:  "ТамК РУз",
			DetectionKeys: []string{"customs"},
			DocumentIDs:   []string{"2876352"},
			URL:           "https://lex.uz/ru/docs/2876352",
		},
		{
			Identity:      EconomicProcedure,
			Name:          "Экономический процессуальный кодекс",
			Abbreviation:  "ЭПК РУз",
			DetectionKeys: []string{"economic procedure", "economic procedural", "economic_procedure"},
			DocumentIDs:   []string{"3523895"},
			URL:           "https://lex.uz/ru/docs/3523895",
		},
		{
			Identity:      Housing,
			Name:          "Жилищный кодекс",
			Abbreviation:  "ЖК РУз",
			DetectionKeys: []string{"housing"},
			DocumentIDs:   []string{"106134"},
			URL:           "https://lex.uz/ru/docs/106134",
		},
		{
			Identity:      Land,
			Name:          "Земельный кодекс",
			Abbreviation:  "ЗК РУз",
			DetectionKeys: []string{"land"},
			DocumentIDs:   []string{"149947"},
			URL:           "https://lex.uz/ru/docs/149947",
		},
		{
			Identity:      Tax,
			Name:          "Налоговый кодекс",
			Abbreviation:  "НК РУз",
			DetectionKeys: []string{"tax"},
			DocumentIDs:   []string{"4674893"},
			URL:           "https://lex.uz/ru/docs/4674893",
		},
		{
			Identity:      AdministrativeProcedure,
			Name:          "Кодекс об административном судопроизводстве",
			Abbreviation:  "АПК РУз",
			DetectionKeys: []string{"administrative procedure", "administrative court procedure", "administrative_procedure"},
			DocumentIDs:   []string{"3527365"},
			URL:           "https://lex.uz/ru/docs/3527365",
		},
	}
}
